// Package recordings finds EOG exports in a directory and classifies them by condition
//
// A file qualifies when its name ends in .txt and contains exactly one condition tag
// (NORMAL, HAPPY, STRESSED), compared case-insensitively. The subject is the name up
// to the first space, NFC normalized so visually equal ids compare equal.
package recordings

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eogfeat/internal/core/features"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/services/features/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Ignored reasons
const (
	ReasonNoTag        = "no condition tag"
	ReasonSeveralTags  = "several condition tags"
	ReasonNoSubject    = "empty subject"
	ReasonNotRecording = "not a .txt file"
)

// Ignored is a directory entry that was not turned into a recording
type Ignored struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Scan lists dir (not recursive) and returns recordings sorted by file name
func Scan(dir string) ([]domain.Recording, []Ignored, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeRead, "read dir %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var recs []domain.Recording
	var ignored []Ignored
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rec, reason := Classify(e.Name())
		if reason != "" {
			ignored = append(ignored, Ignored{Name: e.Name(), Reason: reason})
			continue
		}
		rec.Source = filepath.Join(dir, e.Name())
		recs = append(recs, rec)
	}
	return recs, ignored, nil
}

// Classify derives subject and condition from a file name; reason is empty on success
func Classify(name string) (domain.Recording, string) {
	fold := cases.Fold()
	folded := fold.String(norm.NFC.String(name))
	if !strings.HasSuffix(folded, ".txt") {
		return domain.Recording{}, ReasonNotRecording
	}

	var found []features.Condition
	for _, c := range features.Conditions() {
		if strings.Contains(folded, fold.String(c.Tag())) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return domain.Recording{}, ReasonNoTag
	case 1:
	default:
		return domain.Recording{}, ReasonSeveralTags
	}

	subject := Subject(name)
	if subject == "" {
		return domain.Recording{}, ReasonNoSubject
	}
	return domain.Recording{Subject: subject, Condition: found[0]}, ""
}

// Subject returns the NFC form of name up to the first space, without extension when there is no space
func Subject(name string) string {
	name = norm.NFC.String(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Open opens the recording's source file
func Open(rec domain.Recording) (io.ReadCloser, error) {
	f, err := os.Open(rec.Source)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRead, "open %s", rec.Source)
	}
	return f, nil
}
