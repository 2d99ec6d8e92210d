// Package access decides what a user may do with a piece of showcase
// content. Everything here is a pure function of the user's role, the
// user's id and the item's author and moderation status.
package access

import "strings"

// Role is a user's role. Roles are ordered viewer < creator < admin.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleViewer, RoleCreator, RoleAdmin}

// ParseRole normalizes s. Unknown or empty roles become viewer.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCreator:
		return RoleCreator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleViewer
	}
}

func (r Role) rank() int {
	switch ParseRole(string(r)) {
	case RoleCreator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 1
	}
}

// Label returns the display name for r.
func (r Role) Label() string {
	switch ParseRole(string(r)) {
	case RoleCreator:
		return "Creator"
	case RoleAdmin:
		return "Admin"
	default:
		return "Viewer"
	}
}

// Status is an item's moderation status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// User is the signed-in user. A nil *User is an anonymous visitor.
type User struct {
	ID   string
	Role Role
}

// Item is the part of a content item that permissions depend on.
type Item struct {
	AuthorID string
	Status   Status
}

type permissions struct {
	upload      bool
	editOwn     bool
	deleteOwn   bool
	editAny     bool
	deleteAny   bool
	vote        bool
	moderate    bool
	garbageBin  bool
	adminTools  bool
	viewProfile bool
}

var table = map[Role]permissions{
	RoleViewer: {
		vote:        true,
		viewProfile: true,
	},
	RoleCreator: {
		upload:      true,
		editOwn:     true,
		deleteOwn:   true,
		vote:        true,
		viewProfile: true,
	},
	RoleAdmin: {
		upload:      true,
		editOwn:     true,
		deleteOwn:   true,
		editAny:     true,
		deleteAny:   true,
		moderate:    true,
		garbageBin:  true,
		adminTools:  true,
		viewProfile: true,
	},
}

func (u *User) perms() (permissions, bool) {
	if u == nil {
		return permissions{}, false
	}
	return table[ParseRole(string(u.Role))], true
}

func (u *User) owns(item Item) bool {
	return u != nil && u.ID != "" && u.ID == item.AuthorID
}

// HasMinimumRole reports whether u's role is at least role.
func HasMinimumRole(u *User, role Role) bool {
	if u == nil {
		return false
	}
	return u.Role.rank() >= role.rank()
}

// CanView reports whether u may see item. Approved items are public;
// pending and rejected ones are visible to their author and to admins.
func CanView(u *User, item Item) bool {
	if item.Status == StatusApproved {
		return true
	}
	if u.owns(item) {
		return true
	}
	p, _ := u.perms()
	return p.moderate
}

// CanVote reports whether u may vote on item. Nobody votes on their own
// work, admins never vote, and only approved items take votes.
func CanVote(u *User, item Item) bool {
	p, ok := u.perms()
	if !ok || !p.vote || u.owns(item) {
		return false
	}
	return item.Status == StatusApproved
}

// CanUpload reports whether u may publish new content.
func CanUpload(u *User) bool {
	p, _ := u.perms()
	return p.upload
}

// CanEdit reports whether u may edit item.
func CanEdit(u *User, item Item) bool {
	p, _ := u.perms()
	return p.editAny || (p.editOwn && u.owns(item))
}

// CanDelete reports whether u may delete item.
func CanDelete(u *User, item Item) bool {
	p, _ := u.perms()
	return p.deleteAny || (p.deleteOwn && u.owns(item))
}

// CanModerate reports whether u may approve or reject item.
func CanModerate(u *User, item Item) bool {
	p, _ := u.perms()
	return p.moderate && item.Status == StatusPending
}

// CanAccessGarbageBin reports whether u may browse deleted content.
func CanAccessGarbageBin(u *User) bool {
	p, _ := u.perms()
	return p.garbageBin
}

// CanAccessAdminTools reports whether u may open the admin dashboard.
func CanAccessAdminTools(u *User) bool {
	p, _ := u.perms()
	return p.adminTools
}

// CanViewProfile reports whether u has a profile page.
func CanViewProfile(u *User) bool {
	p, _ := u.perms()
	return p.viewProfile
}

// InitialStatus is the status given to a new upload by u. Admin uploads
// skip moderation.
func InitialStatus(u *User) Status {
	if HasMinimumRole(u, RoleAdmin) {
		return StatusApproved
	}
	return StatusPending
}
