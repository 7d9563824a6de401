package database

import "time"

// News represents one imported or curated press release
type News struct {
	ID            int       `db:"id"`
	Title         string    `db:"title"`
	Slug          string    `db:"slug"`
	Excerpt       string    `db:"excerpt"`
	Content       string    `db:"content"`
	Image         string    `db:"image"`
	PublishedDate time.Time `db:"published_date"`
	SourceURL     string    `db:"source_url"`
	CreatedAt     time.Time `db:"created_at"`
}

// SuccessStory is a company profile shown on the success stories page
type SuccessStory struct {
	ID               int       `db:"id"`
	Title            string    `db:"title"`
	Slug             string    `db:"slug"`
	CompanyName      string    `db:"company_name"`
	Category         string    `db:"category"`
	ShortDescription string    `db:"short_description"`
	Content          string    `db:"content"`
	Image            string    `db:"image"`
	Quote            string    `db:"quote"`
	IsFeatured       bool      `db:"is_featured"`
	Order            int       `db:"sort_order"`
	CreatedAt        time.Time `db:"created_at"`
}

// Partner types
const (
	PartnerInternal      = "internal"
	PartnerInternational = "international"
)

// Partner is a partner organization with its logo
type Partner struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Logo        string `db:"logo"`
	WebsiteURL  string `db:"website_url"`
	Description string `db:"description"`
	PartnerType string `db:"partner_type"`
	Order       int    `db:"sort_order"`
	IsActive    bool   `db:"is_active"`
}

// EU project statuses
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
)

// EUProject is an externally funded project
type EUProject struct {
	ID          int    `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Funder      string `db:"funder"`
	Status      string `db:"status"`
	Order       int    `db:"sort_order"`
}

// GalleryPhoto is one photo on the gallery page
type GalleryPhoto struct {
	ID        int       `db:"id"`
	Image     string    `db:"image"`
	Caption   string    `db:"caption"`
	Order     int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}

// Program is a support program (consulting, education, grants)
type Program struct {
	ID               int    `db:"id"`
	Title            string `db:"title"`
	Slug             string `db:"slug"`
	Badge            string `db:"badge"`
	IconClass        string `db:"icon_class"`
	ShortDescription string `db:"short_description"`
	Content          string `db:"content"`
	Image            string `db:"image"`
	HighlightNumber  string `db:"highlight_number"`
	HighlightText    string `db:"highlight_text"`
	IsFeatured       bool   `db:"is_featured"`
	CTAText          string `db:"cta_text"`
	CTAURL           string `db:"cta_url"`
	Order            int    `db:"sort_order"`
}

// Statistic categories
const (
	StatImpact   = "impact"
	StatPrograms = "programs"
	StatIMA      = "ima"
	StatPartners = "partners"
)

// Statistic is a counter displayed on the site, addressed by its unique key
type Statistic struct {
	ID            int    `db:"id"`
	Key           string `db:"key"`
	Value         string `db:"value"`
	Suffix        string `db:"suffix"`
	DecimalPlaces int    `db:"decimal_places"`
	Label         string `db:"label"`
	IconClass     string `db:"icon_class"`
	Category      string `db:"category"`
	Order         int    `db:"sort_order"`
}

// Mentor is a program mentor
type Mentor struct {
	ID             int    `db:"id"`
	Name           string `db:"name"`
	Specialization string `db:"specialization"`
	Bio            string `db:"bio"`
	Photo          string `db:"photo"`
	Order          int    `db:"sort_order"`
	IsActive       bool   `db:"is_active"`
}

// ContactSubmission is a message sent through the contact form
type ContactSubmission struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Phone       string    `db:"phone"`
	RequestType string    `db:"request_type"`
	Message     string    `db:"message"`
	CreatedAt   time.Time `db:"created_at"`
	IsRead      bool      `db:"is_read"`
}
