package explore

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/app"
	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/engine"
	svcErr "github.com/oggyb/muzz-matchmaker/internal/errors"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
)

// Service implements the Explore gRPC API.
// It translates wire messages to engine calls and owns the cache handling.
type Service struct {
	appCtx *app.AppContext
	engine *engine.Engine
}

// NewExploreService creates a new Explore service with dependencies from AppContext.
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		engine: appCtx.Engine,
	}
}

// parseID validates a decimal user id field.
func parseID(field, value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a valid uint64")
	}
	return id, nil
}

func parsePair(req *PairRequest) (uint64, uint64, error) {
	actorID, err := parseID("actor_user_id", req.ActorUserId)
	if err != nil {
		return 0, 0, err
	}
	recipientID, err := parseID("recipient_user_id", req.RecipientUserId)
	if err != nil {
		return 0, 0, err
	}
	return actorID, recipientID, nil
}

func formatIDs(ids []uint64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatUint(id, 10))
	}
	return out
}

// retrySeconds rounds up so a client never retries too early.
func retrySeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}

func rateLimitResponse(d engine.RateDecision) RateLimitResponse {
	return RateLimitResponse{
		Allowed:           d.Allowed,
		Reason:            string(d.Reason),
		RetryAfterSeconds: retrySeconds(d.RetryAfter),
		Remaining:         d.Remaining,
	}
}

func toView(p *db.Profile, online engine.Presence) *ProfileView {
	return &ProfileView{
		UserId:     strconv.FormatUint(p.UserID, 10),
		Username:   p.Username,
		Age:        p.Age,
		Gender:     string(p.Gender),
		City:       p.City,
		Preference: string(p.Preference),
		Bio:        p.Bio,
		ViewCount:  p.ViewCount,
		Online:     string(online),
		Banned:     p.Status.Has(db.StatusBanned),
		Archived:   p.Status.Has(db.StatusArchived),
	}
}

// invalidatePending drops cached pending-likers counts after a ledger write.
// A failure only means the count stays stale until its TTL.
func (s *Service) invalidatePending(ctx context.Context, ids ...uint64) {
	if err := s.appCtx.RedisCache.InvalidatePending(ctx, ids...); err != nil {
		s.appCtx.Logger.Warn("pending cache invalidation failed", "users", ids, logger.Err(err))
	}
}

// Browse gates the viewer through the rate limiter and returns the next candidate.
//
// Behavior:
//   - Denied requests return allowed=false with reason and retry_after_seconds.
//   - An allowed browse with nobody eligible returns no candidate; the browse is still consumed.
//   - Unknown viewers get NotFound.
func (s *Service) Browse(ctx context.Context, req *UserRequest) (*BrowseResponse, error) {
	viewerID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Browse(ctx, viewerID)
	if err != nil {
		s.appCtx.Logger.Error("Browse failed", "viewer", viewerID, logger.Err(err))
		return nil, svcErr.Map(err)
	}
	if res.Decision.Reason == engine.DenyNotRegistered {
		s.appCtx.Metrics.Browse(string(engine.DenyNotRegistered))
		return nil, svcErr.Map(engine.ErrNotRegistered)
	}

	resp := &BrowseResponse{RateLimit: rateLimitResponse(res.Decision)}
	switch {
	case !res.Decision.Allowed:
		s.appCtx.Metrics.Browse(string(res.Decision.Reason))
	case res.Candidate == nil:
		s.appCtx.Metrics.Browse("empty")
	default:
		s.appCtx.Metrics.Browse("shown")
		resp.Candidate = toView(&res.Candidate.Profile, res.Presence)
		resp.Tier = string(res.Candidate.Tier)
	}

	s.appCtx.Logger.Debug("Browse result", "viewer", viewerID, "allowed", res.Decision.Allowed, "tier", resp.Tier)
	return resp, nil
}

// CheckRateLimit consumes one browse without selecting anyone.
func (s *Service) CheckRateLimit(ctx context.Context, req *UserRequest) (*RateLimitResponse, error) {
	viewerID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	d, err := s.engine.CheckRateLimit(ctx, viewerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if d.Reason == engine.DenyNotRegistered {
		return nil, svcErr.Map(engine.ErrNotRegistered)
	}
	resp := rateLimitResponse(d)
	return &resp, nil
}

// SelectNext previews the next candidate without consuming a browse or
// counting a view.
func (s *Service) SelectNext(ctx context.Context, req *UserRequest) (*SelectNextResponse, error) {
	viewerID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	cand, err := s.engine.SelectNext(ctx, viewerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &SelectNextResponse{}
	if cand != nil {
		resp.Candidate = toView(&cand.Profile, s.engine.OnlineStatus(&cand.Profile))
		resp.Tier = string(cand.Tier)
	}
	return resp, nil
}

// RecordLike stores a like and reports whether the pair is now matched.
//
// Example:
//
//	svc.RecordLike(ctx, &PairRequest{ActorUserId: "1", RecipientUserId: "2"})
func (s *Service) RecordLike(ctx context.Context, req *PairRequest) (*RecordLikeResponse, error) {
	s.appCtx.Logger.Debug("RecordLike called", "actor", req.ActorUserId, "recipient", req.RecipientUserId)
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.RecordLike(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.Interaction("like")
	if res.Created {
		s.appCtx.Metrics.MatchCreated()
	}

	// recipient gains a pending liker; on a match the actor loses one
	s.invalidatePending(ctx, recipientID, actorID)

	return &RecordLikeResponse{Matched: res.Matched}, nil
}

// RecordSkip hides the recipient from the actor for the skip TTL and revokes
// the recipient's like of the actor, if any.
func (s *Service) RecordSkip(ctx context.Context, req *PairRequest) (*RecordSkipResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	revoked, err := s.engine.RecordSkip(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.Interaction("skip")
	if revoked {
		s.invalidatePending(ctx, actorID)
	}
	return &RecordSkipResponse{Revoked: revoked}, nil
}

// Block stores actor → recipient. Repeating it is a no-op (changed=false).
func (s *Service) Block(ctx context.Context, req *PairRequest) (*ChangedResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Block(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.Interaction("block")
	s.invalidatePending(ctx, actorID, recipientID)
	return &ChangedResponse{Changed: created}, nil
}

// Unblock removes actor → recipient only.
func (s *Service) Unblock(ctx context.Context, req *PairRequest) (*ChangedResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	removed, err := s.engine.Unblock(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.Interaction("unblock")
	s.invalidatePending(ctx, actorID, recipientID)
	return &ChangedResponse{Changed: removed}, nil
}

func (s *Service) IsBlocked(ctx context.Context, req *PairRequest) (*IsBlockedResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	blocked, err := s.engine.IsBlocked(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &IsBlockedResponse{Blocked: blocked}, nil
}

func (s *Service) ListBlocked(ctx context.Context, req *UserRequest) (*UserListResponse, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	ids, err := s.engine.ListBlocked(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &UserListResponse{UserIds: formatIDs(ids)}, nil
}

func (s *Service) CreateMatch(ctx context.Context, req *PairRequest) (*ChangedResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.CreateMatch(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if created {
		s.appCtx.Metrics.MatchCreated()
	}
	return &ChangedResponse{Changed: created}, nil
}

func (s *Service) DeleteMatch(ctx context.Context, req *PairRequest) (*ChangedResponse, error) {
	actorID, recipientID, err := parsePair(req)
	if err != nil {
		return nil, err
	}
	removed, err := s.engine.DeleteMatch(ctx, actorID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ChangedResponse{Changed: removed}, nil
}

func (s *Service) ListMatches(ctx context.Context, req *UserRequest) (*UserListResponse, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	ids, err := s.engine.ListMatches(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &UserListResponse{UserIds: formatIDs(ids)}, nil
}

// ListPendingLikers returns users who liked the recipient and are still waiting
// for an answer.
//
// Behavior:
//   - Excludes mutual likes and blocked pairs.
//   - Newest first, cursor-paginated with pagination_token.
//   - limit defaults to 20 and is capped at 100.
func (s *Service) ListPendingLikers(ctx context.Context, req *ListPendingLikersRequest) (*ListPendingLikersResponse, error) {
	s.appCtx.Logger.Debug("ListPendingLikers called", "recipient", req.RecipientUserId)

	recipientID, err := parseID("recipient_user_id", req.RecipientUserId)
	if err != nil {
		return nil, err
	}
	likes, nextToken, err := s.engine.PendingLikersPage(ctx, recipientID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &ListPendingLikersResponse{Likers: make([]Liker, 0, len(likes))}
	for _, l := range likes {
		resp.Likers = append(resp.Likers, Liker{
			ActorId:       strconv.FormatUint(l.FromUserID, 10),
			UnixTimestamp: uint64(l.CreatedAt.UnixMilli()),
		})
	}
	resp.NextPaginationToken = nextToken
	return resp, nil
}

// CountPendingLikers returns how many users are waiting on the recipient.
// Cache-first strategy:
//  1. Attempts to read from Redis (pending:count:userID).
//  2. On a miss or Redis error, falls back to the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountPendingLikers(ctx context.Context, req *UserRequest) (*CountResponse, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}

	// try cache first
	n, ok, err := s.appCtx.RedisCache.GetPendingCount(ctx, userID)
	switch {
	case err != nil:
		s.appCtx.Metrics.CacheLookup("error")
		s.appCtx.Logger.Warn("pending cache read failed", "user", userID, logger.Err(err))
	case ok:
		s.appCtx.Metrics.CacheLookup("hit")
		return &CountResponse{Count: uint64(n)}, nil
	default:
		s.appCtx.Metrics.CacheLookup("miss")
	}

	// fallback: DB
	count, err := s.engine.CountPendingLikers(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.SetPendingCount(ctx, userID, count)

	return &CountResponse{Count: uint64(count)}, nil
}

// RegisterProfile creates or updates the caller's profile.
func (s *Service) RegisterProfile(ctx context.Context, req *RegisterProfileRequest) (*ProfileView, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.RegisterProfile(ctx, engine.Registration{
		UserID:       userID,
		Username:     req.Username,
		Age:          req.Age,
		Gender:       db.Gender(req.Gender),
		City:         req.City,
		Preference:   db.Preference(req.Preference),
		Bio:          req.Bio,
		FilterMinAge: req.FilterMinAge,
		FilterMaxAge: req.FilterMaxAge,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toView(p, s.engine.OnlineStatus(p)), nil
}

func (s *Service) GetProfile(ctx context.Context, req *UserRequest) (*ProfileView, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.GetProfile(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toView(p, s.engine.OnlineStatus(p)), nil
}

// TouchActivity records that the user is active; it also un-archives them.
func (s *Service) TouchActivity(ctx context.Context, req *UserRequest) (*Empty, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	if err := s.engine.TouchActivity(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &Empty{}, nil
}

func (s *Service) GetUserStats(ctx context.Context, req *UserRequest) (*UserStatsResponse, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	st, err := s.engine.UserStats(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &UserStatsResponse{
		ViewCount:     st.ViewCount,
		LikesSent:     st.LikesSent,
		LikesReceived: st.LikesReceived,
		Matches:       st.Matches,
		BrowsesUsed:   st.BrowsesUsed,
		BrowseQuota:   st.BrowseQuota,
	}, nil
}

//
// Admin methods (guarded by the admin token interceptor)
//

func (s *Service) BanProfile(ctx context.Context, req *UserRequest) (*Empty, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Ban(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("profile banned", "user", userID)
	return &Empty{}, nil
}

func (s *Service) UnbanProfile(ctx context.Context, req *UserRequest) (*Empty, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Unban(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("profile unbanned", "user", userID)
	return &Empty{}, nil
}

func (s *Service) PurgeProfile(ctx context.Context, req *UserRequest) (*Empty, error) {
	userID, err := parseID("user_id", req.UserId)
	if err != nil {
		return nil, err
	}
	liked, err := s.engine.Purge(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	// everyone the purged user liked loses a pending liker
	s.invalidatePending(ctx, append(liked, userID)...)
	return &Empty{}, nil
}

// ArchiveInactive archives everyone idle for at least inactive_days.
func (s *Service) ArchiveInactive(ctx context.Context, req *ArchiveInactiveRequest) (*ArchiveInactiveResponse, error) {
	if req.InactiveDays <= 0 {
		return nil, svcErr.InvalidArgument("inactive_days must be positive")
	}
	before := time.Now().UTC().Add(-time.Duration(req.InactiveDays) * 24 * time.Hour)
	n, err := s.engine.ArchiveInactive(ctx, before)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("archived inactive profiles", "count", n, "inactive_days", req.InactiveDays)
	return &ArchiveInactiveResponse{Archived: n}, nil
}

func (s *Service) GetGlobalStats(ctx context.Context, _ *Empty) (*GlobalStatsResponse, error) {
	st, err := s.engine.GlobalStats(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &GlobalStatsResponse{
		Profiles:     st.Profiles,
		ActiveDay:    st.ActiveDay,
		Banned:       st.Banned,
		Archived:     st.Archived,
		Likes:        st.Likes,
		LikesToday:   st.LikesToday,
		Matches:      st.Matches,
		MatchesToday: st.MatchesToday,
		Blocks:       st.Blocks,
	}, nil
}
