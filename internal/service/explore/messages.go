package explore

// Request and response messages of matchmaker.v1.Explore. User ids travel as
// decimal strings.

type Empty struct{}

type UserRequest struct {
	UserId string `json:"user_id"`
}

type PairRequest struct {
	ActorUserId     string `json:"actor_user_id"`
	RecipientUserId string `json:"recipient_user_id"`
}

type ProfileView struct {
	UserId     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	City       string `json:"city"`
	Preference string `json:"preference"`
	Bio        string `json:"bio,omitempty"`
	ViewCount  int64  `json:"view_count"`
	Online     string `json:"online,omitempty"`
	Banned     bool   `json:"banned,omitempty"`
	Archived   bool   `json:"archived,omitempty"`
}

type RateLimitResponse struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason,omitempty"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
	Remaining         int    `json:"remaining"`
}

type BrowseResponse struct {
	RateLimit RateLimitResponse `json:"rate_limit"`
	Candidate *ProfileView      `json:"candidate,omitempty"`
	Tier      string            `json:"tier,omitempty"`
}

type SelectNextResponse struct {
	Candidate *ProfileView `json:"candidate,omitempty"`
	Tier      string       `json:"tier,omitempty"`
}

type RecordLikeResponse struct {
	Matched bool `json:"matched"`
}

type RecordSkipResponse struct {
	Revoked bool `json:"revoked"`
}

type ChangedResponse struct {
	Changed bool `json:"changed"`
}

type IsBlockedResponse struct {
	Blocked bool `json:"blocked"`
}

type UserListResponse struct {
	UserIds []string `json:"user_ids"`
}

type ListPendingLikersRequest struct {
	RecipientUserId string  `json:"recipient_user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty"`
}

type Liker struct {
	ActorId       string `json:"actor_id"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

type ListPendingLikersResponse struct {
	Likers              []Liker `json:"likers"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

type RegisterProfileRequest struct {
	UserId       string `json:"user_id"`
	Username     string `json:"username"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	City         string `json:"city"`
	Preference   string `json:"preference"`
	Bio          string `json:"bio"`
	FilterMinAge *int   `json:"filter_min_age,omitempty"`
	FilterMaxAge *int   `json:"filter_max_age,omitempty"`
}

type UserStatsResponse struct {
	ViewCount     int64 `json:"view_count"`
	LikesSent     int64 `json:"likes_sent"`
	LikesReceived int64 `json:"likes_received"`
	Matches       int64 `json:"matches"`
	BrowsesUsed   int   `json:"browses_used"`
	BrowseQuota   int   `json:"browse_quota"`
}

type ArchiveInactiveRequest struct {
	InactiveDays int `json:"inactive_days"`
}

type ArchiveInactiveResponse struct {
	Archived int64 `json:"archived"`
}

type GlobalStatsResponse struct {
	Profiles     int64 `json:"profiles"`
	ActiveDay    int64 `json:"active_day"`
	Banned       int64 `json:"banned"`
	Archived     int64 `json:"archived"`
	Likes        int64 `json:"likes"`
	LikesToday   int64 `json:"likes_today"`
	Matches      int64 `json:"matches"`
	MatchesToday int64 `json:"matches_today"`
	Blocks       int64 `json:"blocks"`
}
