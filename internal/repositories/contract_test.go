package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/google/uuid"
)

// The functions below run the same behaviour checks against every backend.
// IDs are random so runs against a shared emulator do not collide.

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func testUserRepository(t *testing.T, repo repositories.UserRepository) {
	ctx := context.Background()
	tag := uuid.NewString()[:6]
	alice := &models.User{ID: newID("u"), Username: "alice" + tag, Email: "alice" + tag + "@example.com", CreatedAt: time.Now().UTC()}
	carol := &models.User{ID: newID("u"), Username: "carol" + tag, Email: "carol" + tag + "@example.com", CreatedAt: time.Now().UTC()}

	for _, u := range []*models.User{alice, carol} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.Username, err)
		}
	}

	dup := &models.User{ID: newID("u"), Username: alice.Username, Email: "dup@example.com"}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, repositories.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken for duplicate username, got %v", err)
	}

	got, err := repo.GetUserByUsername(ctx, alice.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("expected id %s, got %s", alice.ID, got.ID)
	}
	if _, err := repo.GetUserByID(ctx, newID("missing")); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}

	// renaming onto a taken username fails and leaves the profile alone
	clash := *alice
	clash.Username = carol.Username
	if err := repo.UpdateUser(ctx, &clash); !errors.Is(err, repositories.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken on rename clash, got %v", err)
	}

	renamed := *alice
	renamed.Username = "alicia" + tag
	renamed.AvatarURL = "https://example.com/a.png"
	if err := repo.UpdateUser(ctx, &renamed); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if _, err := repo.GetUserByUsername(ctx, alice.Username); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("old username should be free after rename, got %v", err)
	}
	got, err = repo.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Username != renamed.Username || got.AvatarURL != renamed.AvatarURL {
		t.Errorf("update not persisted: %+v", got)
	}

	found, err := repo.SearchUsers(ctx, "alic", 10)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	var hit bool
	for _, u := range found {
		if u.ID == alice.ID {
			hit = true
		}
		if u.ID == carol.ID {
			t.Errorf("search for 'alic' returned %s", u.Username)
		}
	}
	if !hit {
		t.Errorf("search for 'alic' did not return %s", renamed.Username)
	}

	// wildcard characters in the prefix match only themselves
	underscore := &models.User{ID: newID("u"), Username: "w" + tag + "_1", Email: "w1" + tag + "@example.com"}
	lookalike := &models.User{ID: newID("u"), Username: "w" + tag + "x1", Email: "w2" + tag + "@example.com"}
	for _, u := range []*models.User{underscore, lookalike} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.Username, err)
		}
	}
	found, err = repo.SearchUsers(ctx, "w"+tag+"_", 10)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(found) != 1 || found[0].ID != underscore.ID {
		t.Errorf("search for %q should return only %s, got %+v", "w"+tag+"_", underscore.Username, found)
	}
	found, err = repo.SearchUsers(ctx, "%", 10)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("search for %q should match nothing, got %+v", "%", found)
	}

	if err := repo.DeleteUser(ctx, carol.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := repo.DeleteUser(ctx, carol.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func testMoodRepository(t *testing.T, repo repositories.MoodRepository) {
	ctx := context.Background()
	owner, other := newID("u"), newID("u")
	now := time.Now().UnixMilli()

	older := &models.MoodEvent{ID: uuid.NewString(), UserID: owner, Username: "owner", Mood: "😄Happiness", Reason: "Feeling great!", Timestamp: now - 2000, Public: true}
	newer := &models.MoodEvent{ID: uuid.NewString(), UserID: owner, Username: "owner", Mood: "😠Anger", Reason: "work", Timestamp: now - 1000, Public: true}
	private := &models.MoodEvent{ID: uuid.NewString(), UserID: owner, Username: "owner", Mood: "😢Sadness", Timestamp: now, Public: false}
	theirs := &models.MoodEvent{ID: uuid.NewString(), UserID: other, Username: "other", Mood: "😨Fear", Timestamp: now - 1500, Public: true}

	for _, m := range []*models.MoodEvent{older, newer, private, theirs} {
		if err := repo.CreateMood(ctx, m); err != nil {
			t.Fatalf("CreateMood: %v", err)
		}
	}

	got, err := repo.GetMood(ctx, owner, older.ID)
	if err != nil {
		t.Fatalf("GetMood: %v", err)
	}
	if !got.Existed {
		t.Error("moods read from the store should be marked as existing")
	}
	if got.Mood != older.Mood || got.Reason != older.Reason {
		t.Errorf("unexpected mood %+v", got)
	}
	if _, err := repo.GetMood(ctx, other, older.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("GetMood with the wrong owner should be ErrNotFound, got %v", err)
	}
	if got, err := repo.FindMood(ctx, theirs.ID); err != nil || got.UserID != other {
		t.Errorf("FindMood: got %+v, %v", got, err)
	}

	history, err := repo.ListMoodsByUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListMoodsByUser: %v", err)
	}
	assertMoodIDs(t, history, private.ID, newer.ID, older.ID)

	feed, err := repo.ListPublicMoodsByUsers(ctx, []string{owner, other})
	if err != nil {
		t.Fatalf("ListPublicMoodsByUsers: %v", err)
	}
	assertMoodIDs(t, feed, newer.ID, theirs.ID, older.ID)

	empty, err := repo.ListPublicMoodsByUsers(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no moods for no users, got %d, %v", len(empty), err)
	}

	// edit is a full overwrite
	edit := *older
	edit.Reason = ""
	edit.Public = false
	if err := repo.UpdateMood(ctx, &edit); err != nil {
		t.Fatalf("UpdateMood: %v", err)
	}
	got, err = repo.GetMood(ctx, owner, older.ID)
	if err != nil {
		t.Fatalf("GetMood after update: %v", err)
	}
	if got.Reason != "" || got.Public {
		t.Errorf("update did not overwrite fields: %+v", got)
	}

	ghost := models.MoodEvent{ID: uuid.NewString(), UserID: owner, Mood: "x"}
	if err := repo.UpdateMood(ctx, &ghost); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("UpdateMood of a missing mood should be ErrNotFound, got %v", err)
	}

	if err := repo.DeleteMood(ctx, other, newer.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("DeleteMood by a non-owner should be ErrNotFound, got %v", err)
	}
	if err := repo.DeleteMood(ctx, owner, newer.ID); err != nil {
		t.Fatalf("DeleteMood: %v", err)
	}
	if _, err := repo.FindMood(ctx, newer.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("deleted mood still found: %v", err)
	}
}

func assertMoodIDs(t *testing.T, moods []models.MoodEvent, want ...string) {
	t.Helper()
	if len(moods) != len(want) {
		t.Fatalf("expected %d moods, got %d", len(want), len(moods))
	}
	for i, id := range want {
		if moods[i].ID != id {
			t.Errorf("mood %d: expected %s, got %s", i, id, moods[i].ID)
		}
	}
}

func testFollowRepository(t *testing.T, repo repositories.FollowRepository) {
	ctx := context.Background()

	t.Run("request accept unfollow", func(t *testing.T) {
		a, b := newID("a"), newID("b")
		if err := repo.RequestFollow(ctx, a, b); err != nil {
			t.Fatalf("RequestFollow: %v", err)
		}
		assertStatus(t, repo, a, b, models.FollowStatusRequested)

		pending, err := repo.ListPendingRequests(ctx, b)
		if err != nil {
			t.Fatalf("ListPendingRequests: %v", err)
		}
		if len(pending) != 1 || pending[0].RequesterID != a || pending[0].Status != models.RequestStatusPending {
			t.Fatalf("unexpected pending requests: %+v", pending)
		}

		if err := repo.AcceptFollowRequest(ctx, a, b); err != nil {
			t.Fatalf("AcceptFollowRequest: %v", err)
		}
		assertStatus(t, repo, a, b, models.FollowStatusFollowing)

		pending, _ = repo.ListPendingRequests(ctx, b)
		if len(pending) != 0 {
			t.Errorf("request should be gone after accept, got %+v", pending)
		}
		followers, err := repo.ListFollowers(ctx, b)
		if err != nil || len(followers) != 1 || followers[0].FollowerID != a {
			t.Errorf("followers of b: %+v, %v", followers, err)
		}
		following, err := repo.ListFollowing(ctx, a)
		if err != nil || len(following) != 1 || following[0].FollowingID != b {
			t.Errorf("following of a: %+v, %v", following, err)
		}
		ids, err := repo.ListFollowingIDs(ctx, a)
		if err != nil || len(ids) != 1 || ids[0] != b {
			t.Errorf("following ids of a: %v, %v", ids, err)
		}
		// the edge is one-directional
		assertStatus(t, repo, b, a, models.FollowStatusNone)

		if err := repo.RequestFollow(ctx, a, b); !errors.Is(err, repositories.ErrAlreadyFollowing) {
			t.Errorf("expected ErrAlreadyFollowing, got %v", err)
		}

		if err := repo.Unfollow(ctx, a, b); err != nil {
			t.Fatalf("Unfollow: %v", err)
		}
		assertStatus(t, repo, a, b, models.FollowStatusNone)
		followers, _ = repo.ListFollowers(ctx, b)
		following, _ = repo.ListFollowing(ctx, a)
		if len(followers) != 0 || len(following) != 0 {
			t.Errorf("both halves of the edge should be gone: followers=%v following=%v", followers, following)
		}
		if err := repo.Unfollow(ctx, a, b); !errors.Is(err, repositories.ErrNotFollowing) {
			t.Errorf("expected ErrNotFollowing, got %v", err)
		}
	})

	t.Run("accept without request changes nothing", func(t *testing.T) {
		a, b := newID("a"), newID("b")
		if err := repo.AcceptFollowRequest(ctx, a, b); !errors.Is(err, repositories.ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
		assertStatus(t, repo, a, b, models.FollowStatusNone)
		following, _ := repo.ListFollowing(ctx, a)
		if len(following) != 0 {
			t.Errorf("no edge should exist, got %+v", following)
		}
	})

	t.Run("reject", func(t *testing.T) {
		a, b := newID("a"), newID("b")
		if err := repo.RequestFollow(ctx, a, b); err != nil {
			t.Fatalf("RequestFollow: %v", err)
		}
		if err := repo.RejectFollowRequest(ctx, a, b); err != nil {
			t.Fatalf("RejectFollowRequest: %v", err)
		}
		assertStatus(t, repo, a, b, models.FollowStatusNone)
		if err := repo.RejectFollowRequest(ctx, a, b); !errors.Is(err, repositories.ErrRequestNotFound) {
			t.Errorf("expected ErrRequestNotFound on second reject, got %v", err)
		}
	})

	t.Run("repeated request stays a single pending request", func(t *testing.T) {
		a, b := newID("a"), newID("b")
		for i := 0; i < 2; i++ {
			if err := repo.RequestFollow(ctx, a, b); err != nil {
				t.Fatalf("RequestFollow #%d: %v", i+1, err)
			}
		}
		pending, err := repo.ListPendingRequests(ctx, b)
		if err != nil || len(pending) != 1 {
			t.Errorf("expected one pending request, got %+v, %v", pending, err)
		}
	})

	t.Run("self follow", func(t *testing.T) {
		a := newID("a")
		if err := repo.RequestFollow(ctx, a, a); !errors.Is(err, repositories.ErrSelfFollow) {
			t.Errorf("expected ErrSelfFollow, got %v", err)
		}
	})
}

func assertStatus(t *testing.T, repo repositories.FollowRepository, requester, target string, want models.FollowStatus) {
	t.Helper()
	got, err := repo.GetFollowStatus(context.Background(), requester, target)
	if err != nil {
		t.Fatalf("GetFollowStatus: %v", err)
	}
	if got != want {
		t.Errorf("status(%s -> %s): expected %q, got %q", requester, target, want, got)
	}
}

func testCommentRepository(t *testing.T, repo repositories.CommentRepository) {
	ctx := context.Background()
	moodID, otherMood := uuid.NewString(), uuid.NewString()
	base := time.Now().UnixMilli()

	comment := func(id, parent string, offset int64) *models.Comment {
		return &models.Comment{
			ID:          id,
			MoodEventID: moodID,
			UserID:      "u1",
			Username:    "user1",
			Content:     "content " + id,
			Timestamp:   base + offset,
			ParentID:    parent,
		}
	}

	first := comment(uuid.NewString(), "", 0)
	second := comment(uuid.NewString(), "", 10)
	reply1 := comment(uuid.NewString(), first.ID, 20)
	reply2 := comment(uuid.NewString(), first.ID, 30)
	nested := comment(uuid.NewString(), reply1.ID, 40)
	for _, c := range []*models.Comment{first, second, reply1, reply2, nested} {
		if err := repo.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}

	orphan := comment(uuid.NewString(), uuid.NewString(), 50)
	if err := repo.CreateComment(ctx, orphan); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("reply to a missing parent should be ErrNotFound, got %v", err)
	}
	crossed := comment(uuid.NewString(), first.ID, 60)
	crossed.MoodEventID = otherMood
	if err := repo.CreateComment(ctx, crossed); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("reply across mood events should be ErrNotFound, got %v", err)
	}

	top, err := repo.ListCommentsByMoodEvent(ctx, moodID)
	if err != nil {
		t.Fatalf("ListCommentsByMoodEvent: %v", err)
	}
	if len(top) != 2 || top[0].ID != first.ID || top[1].ID != second.ID {
		t.Fatalf("expected top-level comments oldest first, got %+v", top)
	}
	if len(top[0].ReplyIDs) != 2 || top[0].ReplyIDs[0] != reply1.ID || top[0].ReplyIDs[1] != reply2.ID {
		t.Errorf("unexpected reply ids %v", top[0].ReplyIDs)
	}

	replies, err := repo.ListReplies(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListReplies: %v", err)
	}
	if len(replies) != 2 || replies[0].ID != reply1.ID {
		t.Errorf("unexpected replies %+v", replies)
	}

	// deleting a top-level comment takes the whole thread with it
	if err := repo.DeleteComment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	for _, id := range []string{first.ID, reply1.ID, reply2.ID, nested.ID} {
		if _, err := repo.GetCommentByID(ctx, id); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("comment %s should be gone, got %v", id, err)
		}
	}
	if _, err := repo.GetCommentByID(ctx, second.ID); err != nil {
		t.Errorf("unrelated comment was removed: %v", err)
	}
	if err := repo.DeleteComment(ctx, first.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
