package domain

import "time"

// Category is the machine-readable code of an issue category.
type Category string

const (
	CategoryRoad  Category = "road"
	CategoryLight Category = "light"
	CategoryWater Category = "water"
	CategoryDrain Category = "drain"
	CategoryWaste Category = "waste"
	CategoryPower Category = "power"
	CategoryProp  Category = "prop"
	CategoryOther Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryRoad, CategoryLight, CategoryWater, CategoryDrain,
	CategoryWaste, CategoryPower, CategoryProp, CategoryOther,
}

// IsValid checks if the category is one of the fixed codes.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRoad, CategoryLight, CategoryWater, CategoryDrain,
		CategoryWaste, CategoryPower, CategoryProp, CategoryOther:
		return true
	default:
		return false
	}
}

// Urgency represents how pressing a reported issue is.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// IsValid checks if the urgency is one of the allowed values.
func (u Urgency) IsValid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// Status represents the lifecycle state of an issue.
type Status string

const (
	StatusSubmitted  Status = "Submitted"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusSubmitted, StatusInProgress, StatusResolved}

// IsValid checks if the status is one of the allowed values.
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no transition may leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusResolved
}

// Contact holds optional reporter contact details.
type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsEmpty reports whether no contact field is set.
func (c *Contact) IsEmpty() bool {
	return c == nil || (c.Phone == "" && c.Email == "")
}

// StatusChange is a single entry of an issue's status history.
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Issue is a citizen-submitted report identified by its tracking id.
// Field names double as the persisted document format.
type Issue struct {
	ID            string         `json:"id"`
	Category      Category       `json:"category"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Images        []string       `json:"images"`
	Location      string         `json:"location"`
	Urgency       Urgency        `json:"urgency"`
	IsAnonymous   bool           `json:"isAnonymous"`
	Contact       *Contact       `json:"contact,omitempty"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	StatusHistory []StatusChange `json:"statusHistory"`
}

// LastChange returns the most recent history entry.
// The second value is false when the history is empty.
func (i *Issue) LastChange() (StatusChange, bool) {
	if len(i.StatusHistory) == 0 {
		return StatusChange{}, false
	}
	return i.StatusHistory[len(i.StatusHistory)-1], true
}

// HistoryConsistent checks that the history is non-empty and ends with the current status.
func (i *Issue) HistoryConsistent() bool {
	last, ok := i.LastChange()
	return ok && last.Status == i.Status
}

// VisibleTo reports whether the viewer's scope covers the issue.
func (i *Issue) VisibleTo(viewer Viewer) bool {
	switch {
	case viewer.Role == RoleAdmin:
		return true
	case viewer.IsOfficer():
		return viewer.Category != "" && i.Category == viewer.Category
	default:
		return false
	}
}

// Clone returns a deep copy that shares no memory with the receiver.
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	c := *i
	if i.Images != nil {
		c.Images = append([]string(nil), i.Images...)
	}
	if i.Contact != nil {
		contact := *i.Contact
		c.Contact = &contact
	}
	if i.StatusHistory != nil {
		c.StatusHistory = append([]StatusChange(nil), i.StatusHistory...)
	}
	return &c
}
