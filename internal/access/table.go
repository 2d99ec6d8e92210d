package access

// Decision is one row of the permission table.
type Decision struct {
	Action  string
	Viewer  bool
	Own     bool // creator acting on their own item
	Other   bool // creator acting on someone else's item
	Admin   bool
	Subject Status
}

// Table evaluates the permission functions for the standard personas and
// returns one row per action. It is what `showcase can` prints.
func Table() []Decision {
	viewer := &User{ID: "viewer", Role: RoleViewer}
	creator := &User{ID: "creator", Role: RoleCreator}
	admin := &User{ID: "admin", Role: RoleAdmin}

	own := func(s Status) Item { return Item{AuthorID: creator.ID, Status: s} }
	other := func(s Status) Item { return Item{AuthorID: "someone-else", Status: s} }

	row := func(action string, s Status, check func(*User, Item) bool) Decision {
		return Decision{
			Action:  action,
			Viewer:  check(viewer, other(s)),
			Own:     check(creator, own(s)),
			Other:   check(creator, other(s)),
			Admin:   check(admin, other(s)),
			Subject: s,
		}
	}

	return []Decision{
		row("view", StatusApproved, CanView),
		row("view", StatusPending, CanView),
		row("vote", StatusApproved, CanVote),
		row("upload", StatusApproved, func(u *User, _ Item) bool { return CanUpload(u) }),
		row("edit", StatusApproved, CanEdit),
		row("delete", StatusApproved, CanDelete),
		row("moderate", StatusPending, CanModerate),
	}
}
