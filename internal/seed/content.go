// Package seed loads the curated catalog content shipped with the site.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Content is the full set of seed records
type Content struct {
	FeaturedStories []string    `yaml:"featured_stories"`
	Stories         []Story     `yaml:"stories"`
	Partners        []Partner   `yaml:"partners"`
	EUProjects      []EUProject `yaml:"eu_projects"`
	Gallery         []string    `yaml:"gallery"`
	Statistics      []Statistic `yaml:"statistics"`
	Programs        []Program   `yaml:"programs"`
	Mentors         []Mentor    `yaml:"mentors"`
}

type Story struct {
	CompanyName      string `yaml:"company_name"`
	Title            string `yaml:"title"`
	Category         string `yaml:"category"`
	ShortDescription string `yaml:"short_description"`
	Content          string `yaml:"content"`
	Quote            string `yaml:"quote"`
	ImageSrc         string `yaml:"image_src"`
	Order            int    `yaml:"order"`
}

type Partner struct {
	Name        string `yaml:"name"`
	LogoFile    string `yaml:"logo_file"`
	WebsiteURL  string `yaml:"website_url"`
	Description string `yaml:"description"`
	PartnerType string `yaml:"partner_type"`
	Order       int    `yaml:"order"`
}

type EUProject struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Funder      string `yaml:"funder"`
	Status      string `yaml:"status"`
	Order       int    `yaml:"order"`
}

type Statistic struct {
	Key           string `yaml:"key"`
	Value         string `yaml:"value"`
	Suffix        string `yaml:"suffix"`
	DecimalPlaces int    `yaml:"decimal_places"`
	Label         string `yaml:"label"`
	IconClass     string `yaml:"icon_class"`
	Category      string `yaml:"category"`
	Order         int    `yaml:"order"`
}

type Program struct {
	Title            string `yaml:"title"`
	Badge            string `yaml:"badge"`
	IconClass        string `yaml:"icon_class"`
	ShortDescription string `yaml:"short_description"`
	Content          string `yaml:"content"`
	ImageSrc         string `yaml:"image_src"`
	HighlightNumber  string `yaml:"highlight_number"`
	HighlightText    string `yaml:"highlight_text"`
	IsFeatured       bool   `yaml:"is_featured"`
	CTAText          string `yaml:"cta_text"`
	CTAURL           string `yaml:"cta_url"`
	Order            int    `yaml:"order"`
}

type Mentor struct {
	Name           string `yaml:"name"`
	Specialization string `yaml:"specialization"`
	Bio            string `yaml:"bio"`
	PhotoSrc       string `yaml:"photo_src"`
	Order          int    `yaml:"order"`
}

// Default returns the embedded seed content
func Default() (*Content, error) {
	return Parse(defaultContent)
}

// Parse decodes seed content from YAML
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed content: %w", err)
	}
	return &c, nil
}

func (c *Content) isFeatured(companyName string) bool {
	for _, name := range c.FeaturedStories {
		if name == companyName {
			return true
		}
	}
	return false
}
