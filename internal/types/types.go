package types

import (
	"encoding/json"
	"html/template"
	"time"
)

// Source identifies where a record was loaded from.
type Source string

const (
	SourceCMS    Source = "cms"
	SourceStatic Source = "static"
)

// BlockType is the tag of a static content block.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockImage   BlockType = "image"
	BlockGallery BlockType = "gallery"
)

// BlockKind is the kind of a rendered view block. It extends BlockType with
// KindRich for structured documents rendered to a single HTML fragment.
type BlockKind string

const (
	KindText    BlockKind = "text"
	KindImage   BlockKind = "image"
	KindGallery BlockKind = "gallery"
	KindRich    BlockKind = "rich"
)

// --- CMS variant ---

// AssetRef is an opaque reference to a CMS-hosted asset.
type AssetRef struct {
	Ref string `json:"_ref"`
}

// CMSImage is an image field as returned by the CMS.
type CMSImage struct {
	Asset *AssetRef `json:"asset,omitempty"`
	Alt   string    `json:"alt,omitempty"`
}

// AssetID returns the asset reference or "" when the image has none.
func (i *CMSImage) AssetID() string {
	if i == nil || i.Asset == nil {
		return ""
	}
	return i.Asset.Ref
}

// CMSProject is a project document as projected by the CMS queries.
type CMSProject struct {
	ID           string          `json:"_id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Tagline      string          `json:"tagline,omitempty"`
	Category     string          `json:"category,omitempty"`
	Tools        []string        `json:"tools,omitempty"`
	Client       string          `json:"client,omitempty"`
	Role         string          `json:"role,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	Year         int             `json:"year,omitempty"`
	ClientReview string          `json:"clientReview,omitempty"`
	Thumbnail    *CMSImage       `json:"thumbnail,omitempty"`
	HeroImage    *CMSImage       `json:"heroImage,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	Featured     bool            `json:"featured"`
	Order        *float64        `json:"order,omitempty"`
}

// CMSTestimonial is a testimonial document from the CMS.
type CMSTestimonial struct {
	ID      string    `json:"_id"`
	Quote   string    `json:"quote"`
	Author  string    `json:"author"`
	Role    string    `json:"role,omitempty"`
	Company string    `json:"company,omitempty"`
	Image   *CMSImage `json:"image,omitempty"`
	Order   *float64  `json:"order,omitempty"`
}

// CMSSiteSettings is the singleton settings document. Every field is optional.
type CMSSiteSettings = SiteSettings

// --- Static variant ---

// GalleryImage is one image of a static gallery block.
type GalleryImage struct {
	Src string `yaml:"src" json:"src"`
	Alt string `yaml:"alt" json:"alt"`
}

// ContentBlock is one block of a static project body.
type ContentBlock struct {
	Type    BlockType      `yaml:"type" json:"type"`
	Heading string         `yaml:"heading,omitempty" json:"heading,omitempty"`
	Body    string         `yaml:"body,omitempty" json:"body,omitempty"`
	Src     string         `yaml:"src,omitempty" json:"src,omitempty"`
	Alt     string         `yaml:"alt,omitempty" json:"alt,omitempty"`
	Caption string         `yaml:"caption,omitempty" json:"caption,omitempty"`
	Images  []GalleryImage `yaml:"images,omitempty" json:"images,omitempty"`
}

// StaticProject is a project from the bundled fallback dataset.
type StaticProject struct {
	Slug         string         `yaml:"slug"`
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	Tagline      string         `yaml:"tagline"`
	Category     string         `yaml:"category"`
	Tools        []string       `yaml:"tools"`
	Client       string         `yaml:"client"`
	Role         string         `yaml:"role"`
	Duration     string         `yaml:"duration"`
	Year         int            `yaml:"year"`
	ClientReview string         `yaml:"clientReview"`
	Thumbnail    string         `yaml:"thumbnail"`
	HeroImage    string         `yaml:"heroImage"`
	Content      []ContentBlock `yaml:"content"`
	Featured     bool           `yaml:"featured"`
	Order        *float64       `yaml:"order"`
}

// StaticTestimonial is a testimonial from the bundled fallback dataset.
type StaticTestimonial struct {
	Quote   string   `yaml:"quote"`
	Author  string   `yaml:"author"`
	Role    string   `yaml:"role"`
	Company string   `yaml:"company"`
	Image   string   `yaml:"image"`
	Order   *float64 `yaml:"order"`
}

// ProjectRecord is a project of either variant. Exactly one of CMS and
// Static is set and Source names which.
type ProjectRecord struct {
	Source Source
	CMS    *CMSProject
	Static *StaticProject
}

// FromCMS wraps a CMS project record.
func FromCMS(p CMSProject) ProjectRecord {
	return ProjectRecord{Source: SourceCMS, CMS: &p}
}

// FromStatic wraps a static project record.
func FromStatic(p StaticProject) ProjectRecord {
	return ProjectRecord{Source: SourceStatic, Static: &p}
}

// --- View models ---

// Image is a displayable image.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Block is a rendered unit of a project's narrative body.
type Block struct {
	Kind    BlockKind     `json:"kind"`
	Heading string        `json:"heading,omitempty"`
	HTML    template.HTML `json:"html,omitempty"`
	Caption string        `json:"caption,omitempty"`
	Image   *Image        `json:"image,omitempty"`
	Images  []Image       `json:"images,omitempty"`
}

// Project is the source-agnostic project view model.
type Project struct {
	Source       Source   `json:"source"`
	ID           string   `json:"id,omitempty"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tagline      string   `json:"tagline,omitempty"`
	Category     string   `json:"category"`
	Tools        []string `json:"tools"`
	Client       string   `json:"client,omitempty"`
	Role         string   `json:"role,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Year         int      `json:"year,omitempty"`
	ClientReview string   `json:"clientReview,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	HeroImageURL string   `json:"heroImageUrl,omitempty"`
	Blocks       []Block  `json:"blocks"`
	Featured     bool     `json:"featured"`
	Order        *float64 `json:"order,omitempty"`
}

// SocialLinks maps platforms to profile URLs. All optional.
type SocialLinks struct {
	Instagram string `yaml:"instagram" json:"instagram,omitempty"`
	LinkedIn  string `yaml:"linkedin" json:"linkedin,omitempty"`
	Twitter   string `yaml:"twitter" json:"twitter,omitempty"`
	Dribbble  string `yaml:"dribbble" json:"dribbble,omitempty"`
	Behance   string `yaml:"behance" json:"behance,omitempty"`
	GitHub    string `yaml:"github" json:"github,omitempty"`
}

// Stats holds the display counters shown on the home and about pages.
type Stats struct {
	ProjectsCompleted string `yaml:"projectsCompleted" json:"projectsCompleted,omitempty"`
	HappyClients      string `yaml:"happyClients" json:"happyClients,omitempty"`
	YearsExperience   string `yaml:"yearsExperience" json:"yearsExperience,omitempty"`
	TeamMembers       string `yaml:"teamMembers" json:"teamMembers,omitempty"`
}

// SiteSettings is the singleton site-wide settings record.
type SiteSettings struct {
	Name        string      `yaml:"name" json:"name,omitempty"`
	Tagline     string      `yaml:"tagline" json:"tagline,omitempty"`
	Description string      `yaml:"description" json:"description,omitempty"`
	Email       string      `yaml:"email" json:"email,omitempty"`
	Phone       string      `yaml:"phone" json:"phone,omitempty"`
	Social      SocialLinks `yaml:"social" json:"social"`
	Stats       Stats       `yaml:"stats" json:"stats"`
}

// Testimonial is the testimonial view model.
type Testimonial struct {
	Quote    string   `json:"quote"`
	Author   string   `json:"author"`
	Role     string   `json:"role,omitempty"`
	Company  string   `json:"company,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Order    *float64 `json:"order,omitempty"`
}

// PricingTier is a pricing package. ID is stable and used as the contact
// form's budget value.
type PricingTier struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	PriceRange string   `yaml:"priceRange" json:"priceRange"`
	Popular    bool     `yaml:"popular" json:"popular"`
	Delivery   string   `yaml:"delivery" json:"delivery"`
	Features   []string `yaml:"features" json:"features"`
	Order      int      `yaml:"order" json:"order"`
}

// --- Contact ---

// ContactSubmission is the payload forwarded to the notification endpoint.
type ContactSubmission struct {
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Company             string    `json:"company,omitempty"`
	SelectedBudgetTier  string    `json:"selectedBudgetTier"`
	SelectedBudgetRange string    `json:"selectedBudgetRange"`
	ProjectDetails      string    `json:"projectDetails"`
	Timestamp           time.Time `json:"timestamp"`
	PageURL             string    `json:"pageUrl,omitempty"`
	UserAgent           string    `json:"userAgent,omitempty"`
}

// ContactAck is the acknowledgement returned by the submission endpoint.
type ContactAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ContentSource string `json:"content_source"`
	ImageProvider string `json:"image_provider"`
}
