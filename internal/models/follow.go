package models

// FollowStatus is the state of a (requester, target) pair.
type FollowStatus string

const (
	FollowStatusNone      FollowStatus = "none"
	FollowStatusRequested FollowStatus = "requested"
	FollowStatusFollowing FollowStatus = "following"
)

// RequestStatusPending is the only status a stored follow request carries.
const RequestStatusPending = "pending"

// FollowRequest is a pending request stored at users/{TargetID}/requests/{RequesterID}
type FollowRequest struct {
	RequesterID string `json:"requester_id" firestore:"requesterId" gorm:"primaryKey;size:128"`
	TargetID    string `json:"target_id" firestore:"-" gorm:"primaryKey;size:128;index"`
	Status      string `json:"status" firestore:"status" gorm:"size:20"`
	Timestamp   int64  `json:"timestamp" firestore:"timestamp"`
}

// Follow is an accepted edge. In Firestore it is materialised twice, as
// users/{FollowingID}/followers/{FollowerID} and users/{FollowerID}/following/{FollowingID}.
type Follow struct {
	FollowerID  string `json:"follower_id" firestore:"-" gorm:"primaryKey;size:128"`
	FollowingID string `json:"following_id" firestore:"-" gorm:"primaryKey;size:128;index"`
	Timestamp   int64  `json:"timestamp" firestore:"timestamp"`
}

// FollowEdgeDoc is the document body of either half of a follow edge
type FollowEdgeDoc struct {
	Timestamp int64 `firestore:"timestamp"`
}
