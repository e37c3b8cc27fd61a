package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// Profile is the single-row site owner profile.
type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Bio         string    `gorm:"type:text" json:"bio"`
	Avatar      string    `json:"avatar"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	ResumeURL   string    `json:"resumeUrl"`
	HeroTagline string    `json:"heroTagline"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string { return "profile" }

// DefaultProfile is seeded when no profile row exists.
func DefaultProfile() Profile {
	return Profile{
		Name:        "Your Name",
		Title:       "Full Stack Developer",
		Bio:         "A passionate developer creating amazing web experiences.",
		Email:       "hello@example.com",
		Location:    "New York, USA",
		HeroTagline: "Building the future, one line of code at a time.",
	}
}

// Skill is an entry of the skills section.
type Skill struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Category     string `gorm:"default:other" json:"category"`
	Proficiency  int    `gorm:"default:80" json:"proficiency"`
	Icon         string `json:"icon"`
	DisplayOrder int    `gorm:"index" json:"displayOrder"`
}

func (Skill) TableName() string            { return "skills" }
func (s *Skill) SetDisplayOrder(order int) { s.DisplayOrder = order }

// Validate checks the fields required on create.
func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if s.Category == "" {
		s.Category = "other"
	}
	if s.Proficiency == 0 {
		s.Proficiency = 80
	}
	if s.Proficiency < 0 || s.Proficiency > 100 {
		return errors.New("proficiency must be between 0 and 100")
	}
	return nil
}

// StringList is stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Project is a portfolio project.
type Project struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Image        string     `json:"image"`
	Technologies StringList `gorm:"type:text" json:"technologies"`
	LiveURL      string     `json:"liveUrl"`
	GithubURL    string     `json:"githubUrl"`
	Featured     bool       `gorm:"default:false;index" json:"featured"`
	DisplayOrder int        `gorm:"index" json:"displayOrder"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (Project) TableName() string            { return "projects" }
func (p *Project) SetDisplayOrder(order int) { p.DisplayOrder = order }

// Validate checks the fields required on create.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if p.Technologies == nil {
		p.Technologies = StringList{}
	}
	return nil
}

// Experience is a work history entry.
type Experience struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Company      string `gorm:"not null" json:"company"`
	Position     string `gorm:"not null" json:"position"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `gorm:"type:text" json:"description"`
	Current      bool   `gorm:"default:false" json:"current"`
	DisplayOrder int    `gorm:"index" json:"displayOrder"`
}

func (Experience) TableName() string            { return "experience" }
func (e *Experience) SetDisplayOrder(order int) { e.DisplayOrder = order }

// Validate checks the fields required on create.
func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Company) == "" {
		return fmt.Errorf("%w: company", ErrMissingField)
	}
	if strings.TrimSpace(e.Position) == "" {
		return fmt.Errorf("%w: position", ErrMissingField)
	}
	return nil
}

// Platform identifies a social network.
type Platform string

const (
	PlatformGitHub   Platform = "github"
	PlatformLinkedIn Platform = "linkedin"
	PlatformTwitter  Platform = "twitter"
	PlatformFacebook Platform = "facebook"
	PlatformYouTube  Platform = "youtube"
	PlatformX        Platform = "x"
	PlatformTelegram Platform = "telegram"
)

// PlatformInfo describes how a platform is rendered.
type PlatformInfo struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var platforms = map[Platform]PlatformInfo{
	PlatformGitHub:   {Label: "GitHub", Icon: "github"},
	PlatformLinkedIn: {Label: "LinkedIn", Icon: "linkedin"},
	PlatformTwitter:  {Label: "Twitter", Icon: "twitter"},
	PlatformFacebook: {Label: "Facebook", Icon: "facebook"},
	PlatformYouTube:  {Label: "YouTube", Icon: "youtube"},
	PlatformX:        {Label: "X", Icon: "x"},
	PlatformTelegram: {Label: "Telegram", Icon: "send"},
}

// Info returns the descriptor of p and whether p is a known platform.
func (p Platform) Info() (PlatformInfo, bool) {
	info, ok := platforms[p]
	return info, ok
}

// Platforms lists the known platforms in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformGitHub, PlatformLinkedIn, PlatformTwitter, PlatformFacebook, PlatformYouTube, PlatformX, PlatformTelegram}
}

// SocialLink is a link to one of the owner's social profiles.
type SocialLink struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Platform     Platform `gorm:"not null" json:"platform"`
	URL          string   `gorm:"not null" json:"url"`
	DisplayOrder int      `gorm:"index" json:"displayOrder"`
}

func (SocialLink) TableName() string            { return "social_links" }
func (s *SocialLink) SetDisplayOrder(order int) { s.DisplayOrder = order }

// Validate checks the fields required on create.
func (s *SocialLink) Validate() error {
	s.Platform = Platform(strings.ToLower(strings.TrimSpace(string(s.Platform))))
	if _, ok := s.Platform.Info(); !ok {
		return fmt.Errorf("unknown platform %q", s.Platform)
	}
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("%w: url", ErrMissingField)
	}
	return nil
}
