package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cmda-chisinau/site/internal/database"
	"github.com/cmda-chisinau/site/internal/slug"
	"github.com/cmda-chisinau/site/internal/storage"
)

// Store creates catalog records unless their natural key already exists.
// Each method reports whether a record was created.
type Store interface {
	EnsureStory(ctx context.Context, s *database.SuccessStory) (bool, error)
	EnsurePartner(ctx context.Context, p *database.Partner) (bool, error)
	EnsureEUProject(ctx context.Context, p *database.EUProject) (bool, error)
	EnsureGalleryPhoto(ctx context.Context, p *database.GalleryPhoto) (bool, error)
	EnsureStatistic(ctx context.Context, s *database.Statistic) (bool, error)
	EnsureProgram(ctx context.Context, p *database.Program) (bool, error)
	EnsureMentor(ctx context.Context, m *database.Mentor) (bool, error)
}

// Loader writes seed content into the store, copying the referenced images
// from the static image directory into file storage
type Loader struct {
	store    Store
	files    storage.Storage
	imageDir string
	log      logrus.FieldLogger
}

// NewLoader creates a loader reading images from staticDir/img
func NewLoader(store Store, files storage.Storage, staticDir string, log logrus.FieldLogger) *Loader {
	return &Loader{
		store:    store,
		files:    files,
		imageDir: filepath.Join(staticDir, "img"),
		log:      log,
	}
}

// Load seeds every section of c. It can be run any number of times.
func (l *Loader) Load(ctx context.Context, c *Content) error {
	l.log.Info("Loading initial content...")

	steps := []struct {
		name string
		run  func(context.Context, *Content) error
	}{
		{"success stories", l.loadStories},
		{"partners", l.loadPartners},
		{"EU projects", l.loadEUProjects},
		{"gallery photos", l.loadGallery},
		{"statistics", l.loadStatistics},
		{"programs", l.loadPrograms},
		{"mentors", l.loadMentors},
	}
	for _, step := range steps {
		if err := step.run(ctx, c); err != nil {
			return fmt.Errorf("failed to load %s: %w", step.name, err)
		}
	}

	l.log.Info("All initial content loaded successfully.")
	return nil
}

func (l *Loader) report(created bool, kind, name string) {
	status := "EXISTS"
	if created {
		status = "CREATED"
	}
	l.log.Infof("  [%s] %s: %s", status, kind, name)
}

func (l *Loader) loadStories(ctx context.Context, c *Content) error {
	l.log.Info("--- Success Stories ---")
	for _, s := range c.Stories {
		image, err := l.copyImage(ctx, s.ImageSrc, storage.CategoryStories)
		if err != nil {
			return err
		}

		story := &database.SuccessStory{
			Title:            s.Title,
			Slug:             slug.Make(s.CompanyName),
			CompanyName:      s.CompanyName,
			Category:         s.Category,
			ShortDescription: s.ShortDescription,
			Content:          s.Content,
			Image:            image,
			Quote:            s.Quote,
			IsFeatured:       c.isFeatured(s.CompanyName),
			Order:            s.Order,
		}
		created, err := l.store.EnsureStory(ctx, story)
		if err != nil {
			return err
		}
		l.report(created, "SuccessStory", s.CompanyName)
	}
	return nil
}

func (l *Loader) loadPartners(ctx context.Context, c *Content) error {
	l.log.Info("--- Partners ---")
	for _, p := range c.Partners {
		logo, err := l.copyImage(ctx, p.LogoFile, storage.CategoryPartners)
		if err != nil {
			return err
		}

		created, err := l.store.EnsurePartner(ctx, &database.Partner{
			Name:        p.Name,
			Logo:        logo,
			WebsiteURL:  p.WebsiteURL,
			Description: p.Description,
			PartnerType: p.PartnerType,
			Order:       p.Order,
			IsActive:    true,
		})
		if err != nil {
			return err
		}
		l.report(created, "Partner", p.Name)
	}
	return nil
}

func (l *Loader) loadEUProjects(ctx context.Context, c *Content) error {
	l.log.Info("--- EU Projects ---")
	for _, p := range c.EUProjects {
		created, err := l.store.EnsureEUProject(ctx, &database.EUProject{
			Title:       p.Title,
			Description: p.Description,
			Funder:      p.Funder,
			Status:      p.Status,
			Order:       p.Order,
		})
		if err != nil {
			return err
		}
		l.report(created, "EUProject", p.Title)
	}
	return nil
}

func (l *Loader) loadGallery(ctx context.Context, c *Content) error {
	l.log.Info("--- Gallery Photos ---")
	for i, file := range c.Gallery {
		image, err := l.copyImage(ctx, file, storage.CategoryGallery)
		if err != nil {
			return err
		}

		created, err := l.store.EnsureGalleryPhoto(ctx, &database.GalleryPhoto{
			Image: image,
			Order: i + 1,
		})
		if err != nil {
			return err
		}
		l.report(created, "GalleryPhoto", file)
	}
	return nil
}

func (l *Loader) loadStatistics(ctx context.Context, c *Content) error {
	l.log.Info("--- Statistics ---")
	for _, s := range c.Statistics {
		created, err := l.store.EnsureStatistic(ctx, &database.Statistic{
			Key:           s.Key,
			Value:         s.Value,
			Suffix:        s.Suffix,
			DecimalPlaces: s.DecimalPlaces,
			Label:         s.Label,
			IconClass:     s.IconClass,
			Category:      s.Category,
			Order:         s.Order,
		})
		if err != nil {
			return err
		}
		l.report(created, "Statistic", fmt.Sprintf("%s = %s%s", s.Key, s.Value, s.Suffix))
	}
	return nil
}

func (l *Loader) loadPrograms(ctx context.Context, c *Content) error {
	l.log.Info("--- Programs ---")
	for _, p := range c.Programs {
		image, err := l.copyImage(ctx, p.ImageSrc, storage.CategoryPrograms)
		if err != nil {
			return err
		}

		created, err := l.store.EnsureProgram(ctx, &database.Program{
			Title:            p.Title,
			Slug:             slug.Make(p.Title),
			Badge:            p.Badge,
			IconClass:        p.IconClass,
			ShortDescription: p.ShortDescription,
			Content:          p.Content,
			Image:            image,
			HighlightNumber:  p.HighlightNumber,
			HighlightText:    p.HighlightText,
			IsFeatured:       p.IsFeatured,
			CTAText:          p.CTAText,
			CTAURL:           p.CTAURL,
			Order:            p.Order,
		})
		if err != nil {
			return err
		}
		l.report(created, "Program", p.Title)
	}
	return nil
}

func (l *Loader) loadMentors(ctx context.Context, c *Content) error {
	if len(c.Mentors) == 0 {
		return nil
	}
	l.log.Info("--- Mentors ---")
	for _, m := range c.Mentors {
		photo, err := l.copyImage(ctx, m.PhotoSrc, storage.CategoryMentors)
		if err != nil {
			return err
		}

		created, err := l.store.EnsureMentor(ctx, &database.Mentor{
			Name:           m.Name,
			Specialization: m.Specialization,
			Bio:            m.Bio,
			Photo:          photo,
			Order:          m.Order,
			IsActive:       true,
		})
		if err != nil {
			return err
		}
		l.report(created, "Mentor", m.Name)
	}
	return nil
}

// copyImage makes imageDir/src available as category/<base name of src> and
// returns that reference. A missing source only produces a warning; the
// reference is returned regardless so the record points where the file is
// expected.
func (l *Loader) copyImage(ctx context.Context, src, category string) (string, error) {
	if src == "" {
		return "", nil
	}
	ref := storage.Ref(category, path.Base(src))

	srcPath := filepath.Join(l.imageDir, filepath.FromSlash(src))
	data, err := os.ReadFile(srcPath)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warnf("  Source image not found: %s", srcPath)
		return ref, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", srcPath, err)
	}

	exists, err := l.files.Exists(ctx, ref)
	if err != nil {
		return "", err
	}
	if exists {
		l.log.Infof("  Image already exists: %s", ref)
		return ref, nil
	}

	saved, err := l.files.Save(ctx, category, path.Base(src), data)
	if err != nil {
		return "", err
	}
	l.log.Infof("  Copied %s -> %s", src, saved)
	return saved, nil
}
