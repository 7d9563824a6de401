// Package storage keeps uploaded and downloaded media files.
//
// A reference is the path of a file relative to the media root, for example
// "news/some-title.jpg". References are what the database stores.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Content categories
const (
	CategoryNews     = "news"
	CategoryStories  = "stories"
	CategoryPartners = "partners"
	CategoryGallery  = "gallery"
	CategoryPrograms = "programs"
	CategoryMentors  = "mentors"
)

// Storage stores named byte content per content category
type Storage interface {
	// Save stores data and returns its reference. An existing file is never
	// overwritten; a free name is picked instead.
	Save(ctx context.Context, category, name string, data []byte) (string, error)
	// Exists reports whether a reference points to a stored file
	Exists(ctx context.Context, ref string) (bool, error)
	// URL returns the public URL of a reference
	URL(ref string) string
}

// Ref joins a category and file name into a reference
func Ref(category, name string) string {
	return path.Join(category, name)
}

func validateName(category, name string) error {
	if category == "" || strings.Contains(category, "..") {
		return fmt.Errorf("invalid category %q", category)
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// candidate returns name for the first attempt, then name_1, name_2, ... keeping the extension
func candidate(name string, attempt int) string {
	if attempt == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), attempt, ext)
}

const maxNameAttempts = 1000

func joinURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if base == "" {
		return "/" + ref
	}
	return strings.TrimRight(base, "/") + "/" + ref
}
