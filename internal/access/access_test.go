package access

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var (
	viewer  = &User{ID: "v1", Role: RoleViewer}
	creator = &User{ID: "c1", Role: RoleCreator}
	admin   = &User{ID: "a1", Role: RoleAdmin}

	ownApproved   = Item{AuthorID: "c1", Status: StatusApproved}
	otherApproved = Item{AuthorID: "c2", Status: StatusApproved}
	ownPending    = Item{AuthorID: "c1", Status: StatusPending}
	otherPending  = Item{AuthorID: "c2", Status: StatusPending}
)

func TestParseRole(t *testing.T) {
	Convey("ParseRole", t, func() {
		So(ParseRole("admin"), ShouldEqual, RoleAdmin)
		So(ParseRole(" Creator "), ShouldEqual, RoleCreator)
		So(ParseRole("viewer"), ShouldEqual, RoleViewer)
		Convey("Should fall back to viewer", func() {
			So(ParseRole(""), ShouldEqual, RoleViewer)
			So(ParseRole("superuser"), ShouldEqual, RoleViewer)
		})
	})
}

func TestLabel(t *testing.T) {
	Convey("Label", t, func() {
		So(RoleViewer.Label(), ShouldEqual, "Viewer")
		So(RoleCreator.Label(), ShouldEqual, "Creator")
		So(RoleAdmin.Label(), ShouldEqual, "Admin")
		So(Role("bogus").Label(), ShouldEqual, "Viewer")
	})
}

func TestHasMinimumRole(t *testing.T) {
	Convey("HasMinimumRole", t, func() {
		So(HasMinimumRole(admin, RoleCreator), ShouldBeTrue)
		So(HasMinimumRole(creator, RoleCreator), ShouldBeTrue)
		So(HasMinimumRole(viewer, RoleCreator), ShouldBeFalse)
		So(HasMinimumRole(nil, RoleViewer), ShouldBeFalse)
		So(HasMinimumRole(&User{Role: "unknown"}, RoleViewer), ShouldBeTrue)
	})
}

func TestCanView(t *testing.T) {
	Convey("CanView", t, func() {
		Convey("Approved content is public", func() {
			So(CanView(nil, otherApproved), ShouldBeTrue)
			So(CanView(viewer, otherApproved), ShouldBeTrue)
			So(CanView(creator, otherApproved), ShouldBeTrue)
			So(CanView(admin, otherApproved), ShouldBeTrue)
		})
		Convey("Pending content is visible to its author and admins", func() {
			So(CanView(creator, ownPending), ShouldBeTrue)
			So(CanView(creator, otherPending), ShouldBeFalse)
			So(CanView(viewer, otherPending), ShouldBeFalse)
			So(CanView(admin, otherPending), ShouldBeTrue)
			So(CanView(nil, otherPending), ShouldBeFalse)
		})
	})
}

func TestCanVote(t *testing.T) {
	Convey("CanVote", t, func() {
		So(CanVote(viewer, otherApproved), ShouldBeTrue)
		So(CanVote(creator, otherApproved), ShouldBeTrue)
		So(CanVote(creator, ownApproved), ShouldBeFalse)
		So(CanVote(admin, otherApproved), ShouldBeFalse)
		So(CanVote(nil, otherApproved), ShouldBeFalse)

		Convey("Should not vote on unapproved content", func() {
			So(CanVote(viewer, otherPending), ShouldBeFalse)
		})
		Convey("Should not vote on own content as a viewer", func() {
			So(CanVote(viewer, Item{AuthorID: "v1", Status: StatusApproved}), ShouldBeFalse)
		})
	})
}

func TestCanUpload(t *testing.T) {
	Convey("CanUpload", t, func() {
		So(CanUpload(viewer), ShouldBeFalse)
		So(CanUpload(creator), ShouldBeTrue)
		So(CanUpload(admin), ShouldBeTrue)
		So(CanUpload(nil), ShouldBeFalse)
	})
}

func TestCanEditAndDelete(t *testing.T) {
	Convey("CanEdit and CanDelete", t, func() {
		for _, check := range []func(*User, Item) bool{CanEdit, CanDelete} {
			So(check(viewer, otherApproved), ShouldBeFalse)
			So(check(creator, ownApproved), ShouldBeTrue)
			So(check(creator, otherApproved), ShouldBeFalse)
			So(check(admin, otherApproved), ShouldBeTrue)
			So(check(nil, otherApproved), ShouldBeFalse)
		}
		Convey("An empty id never owns an item", func() {
			anon := &User{Role: RoleCreator}
			So(CanEdit(anon, Item{Status: StatusApproved}), ShouldBeFalse)
		})
	})
}

func TestCanModerate(t *testing.T) {
	Convey("CanModerate", t, func() {
		So(CanModerate(admin, otherPending), ShouldBeTrue)
		So(CanModerate(admin, otherApproved), ShouldBeFalse)
		So(CanModerate(creator, ownPending), ShouldBeFalse)
		So(CanModerate(viewer, otherPending), ShouldBeFalse)
	})
}

func TestAdminAreas(t *testing.T) {
	Convey("Admin areas", t, func() {
		So(CanAccessAdminTools(admin), ShouldBeTrue)
		So(CanAccessAdminTools(creator), ShouldBeFalse)
		So(CanAccessGarbageBin(admin), ShouldBeTrue)
		So(CanAccessGarbageBin(viewer), ShouldBeFalse)
		So(CanViewProfile(viewer), ShouldBeTrue)
		So(CanViewProfile(nil), ShouldBeFalse)
	})
}

func TestInitialStatus(t *testing.T) {
	Convey("InitialStatus", t, func() {
		So(InitialStatus(admin), ShouldEqual, StatusApproved)
		So(InitialStatus(creator), ShouldEqual, StatusPending)
	})
}

func TestTable(t *testing.T) {
	Convey("Table", t, func() {
		rows := map[string]Decision{}
		for _, d := range Table() {
			rows[d.Action+"/"+string(d.Subject)] = d
		}

		So(rows["vote/approved"], ShouldResemble, Decision{
			Action: "vote", Viewer: true, Own: false, Other: true, Admin: false, Subject: StatusApproved,
		})
		So(rows["upload/approved"].Viewer, ShouldBeFalse)
		So(rows["upload/approved"].Own, ShouldBeTrue)
		So(rows["moderate/pending"], ShouldResemble, Decision{
			Action: "moderate", Admin: true, Subject: StatusPending,
		})
		So(rows["edit/approved"].Other, ShouldBeFalse)
		So(rows["delete/approved"].Admin, ShouldBeTrue)
	})
}
