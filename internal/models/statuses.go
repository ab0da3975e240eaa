package models

type UserStatus string
type ProjectStatus string
type ChatRoomStatus string
type TransactionType string
type ReviewedUserTitle string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	ProjectStatusActive     ProjectStatus = "active"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCanceled   ProjectStatus = "canceled"
	ProjectStatusExpired    ProjectStatus = "expired"

	ChatRoomStatusActive ChatRoomStatus = "active"
	ChatRoomStatusClosed ChatRoomStatus = "closed"

	TransactionPointsSpent         TransactionType = "POINTS_SPENT"
	TransactionPointsReceived      TransactionType = "POINTS_RECEIVED"
	TransactionSuperPointsSpent    TransactionType = "SUPER_POINTS_SPENT"
	TransactionSuperPointsReceived TransactionType = "SUPER_POINTS_RECEIVED"
	TransactionBidsSpent           TransactionType = "BIDS_SPENT"
	TransactionBidsReceived        TransactionType = "BIDS_RECEIVED"

	ReviewedUserClient     ReviewedUserTitle = "client"
	ReviewedUserFreelancer ReviewedUserTitle = "freelancer"
)
