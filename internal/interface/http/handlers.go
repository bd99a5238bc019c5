package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/application/query"
	"github.com/finzen-app/finzen-engine/internal/application/saga"
	"github.com/finzen-app/finzen-engine/internal/domain/finance"
	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/interface/http/handlers"
	"github.com/finzen-app/finzen-engine/pkg/logger"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "FinZen Progress Engine API",
		"version":     "v1",
		"description": "REST API for FinZen - points, streaks, challenges and badges",
		"endpoints": map[string]string{
			"health":      "/health",
			"profile":     "/api/v1/gamification/profile",
			"challenges":  "/api/v1/gamification/challenges",
			"badges":      "/api/v1/gamification/badges",
			"leaderboard": "/api/v1/gamification/leaderboard",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Token  string `json:"token"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.deps.Onboarding == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration is not configured")
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	input := saga.OnboardingInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}
	if err := input.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.Onboarding.Execute(r.Context(), input)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			writeJSONError(w, http.StatusConflict, "email_taken", "Email is already registered")
			return
		}
		s.logger.Error("failed to register user", logger.Err(err))
		s.writeDomainError(w, err, "Failed to register user")
		return
	}

	token, err := s.deps.Sessions.Create(r.Context(), result.UserID)
	if err != nil {
		s.logger.Error("failed to create session", logger.Err(err), logger.UserID(result.UserID.Int64()))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		UserID: result.UserID.Int64(),
		Email:  result.Email,
		Name:   req.Name,
		Token:  token,
	})
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.LoginHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Login is not configured")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.LoginCommand{Email: req.Email, Password: req.Password}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.LoginHandler.Handle(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
			return
		}
		s.logger.Error("failed to log in", logger.Err(err))
		s.writeDomainError(w, err, "Failed to log in")
		return
	}

	token, err := s.deps.Sessions.Create(r.Context(), result.UserID)
	if err != nil {
		s.logger.Error("failed to create session", logger.Err(err), logger.UserID(result.UserID.Int64()))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		UserID: result.UserID.Int64(),
		Email:  result.Email,
		Name:   result.Name,
		Token:  token,
	})
}

// handleLogout handles POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := handlers.BearerToken(r)
	if token != "" {
		if err := s.deps.Sessions.Revoke(r.Context(), token); err != nil {
			s.logger.Warn("failed to revoke session", logger.Err(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GAMIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProfile handles GET /api/v1/gamification/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.GetProfileHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile handler not configured")
		return
	}

	result, err := s.deps.GetProfileHandler.Handle(r.Context(), query.GetProfileQuery{UserID: userID})
	if err != nil {
		s.logger.Error("failed to get profile", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetChallenges handles GET /api/v1/gamification/challenges
func (s *Server) handleGetChallenges(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.GetChallengesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Challenges handler not configured")
		return
	}

	q := query.GetChallengesQuery{
		UserID:     userID,
		OnlyActive: getQueryParamBool(r, "only_active"),
	}

	result, err := s.deps.GetChallengesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get challenges", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to get challenges")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetBadges handles GET /api/v1/gamification/badges
func (s *Server) handleGetBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.GetBadgesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Badges handler not configured")
		return
	}

	q := query.GetBadgesQuery{
		UserID:     userID,
		OnlyEarned: getQueryParamBool(r, "only_earned"),
	}

	result, err := s.deps.GetBadgesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get badges", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to get badges")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLeaderboard handles GET /api/v1/gamification/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := handlers.UserIDFromContext(r.Context())

	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	q := query.GetLeaderboardQuery{
		Limit:           getQueryParamInt(r, "limit", 20),
		HighlightUserID: userID,
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get leaderboard", logger.Err(err))
		s.writeDomainError(w, err, "Failed to get leaderboard")
		return
	}

	meta := &ResponseMeta{
		TotalCount: len(result.Entries),
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleRefreshProgress handles POST /api/v1/gamification/refresh
func (s *Server) handleRefreshProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.RefreshProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Refresh handler not configured")
		return
	}

	cmd := command.RefreshProgressCommand{
		UserID:        userID,
		Reason:        command.RefreshReasonManual,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.RefreshProgressHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to refresh progress", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to refresh progress")
		return
	}

	writeJSON(w, http.StatusOK, newRefreshResponse(result))
}

// refreshResponse is the API shape of a refresh pass: catalog IDs are
// resolved to display names.
type refreshResponse struct {
	CompletedChallenges []rewardItem `json:"completed_challenges"`
	EarnedBadges        []rewardItem `json:"earned_badges"`
	ActivityRecorded    bool         `json:"activity_recorded"`
}

type rewardItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

func newRefreshResponse(result *command.RefreshProgressResult) refreshResponse {
	resp := refreshResponse{
		CompletedChallenges: []rewardItem{},
		EarnedBadges:        []rewardItem{},
		ActivityRecorded:    result.ActivityRecorded,
	}
	for _, id := range result.CompletedChallenges {
		item := rewardItem{ID: id}
		if def, ok := gamification.GetChallengeDefinition(id); ok {
			item.Name = def.Title
			item.Icon = def.Icon
		}
		resp.CompletedChallenges = append(resp.CompletedChallenges, item)
	}
	for _, id := range result.EarnedBadges {
		item := rewardItem{ID: id}
		if def, ok := gamification.GetBadgeDefinition(id); ok {
			item.Name = def.Name
			item.Icon = def.Icon
		}
		resp.EarnedBadges = append(resp.EarnedBadges, item)
	}
	return resp
}

// handleRecordActivity handles POST /api/v1/gamification/activity
func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.RecordActivityHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Activity handler not configured")
		return
	}

	cmd := command.RecordActivityCommand{
		UserID:        userID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.RecordActivityHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to record activity", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to record activity")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// FINANCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"` // "2006-01-02", defaults to today
}

type incomeRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
}

type goalRequest struct {
	Name     string  `json:"name"`
	Target   float64 `json:"target"`
	Deadline string  `json:"deadline,omitempty"`
	Type     string  `json:"type,omitempty"`
}

type goalProgressRequest struct {
	Amount float64 `json:"amount"`
}

// handleRecordExpense handles POST /api/v1/finance/expenses
func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.RecordExpenseHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Expense handler not configured")
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid date", err.Error())
		return
	}

	cmd := command.RecordExpenseCommand{
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.RecordExpenseHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to record expense", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to record expense")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleRecordIncome handles POST /api/v1/finance/incomes
func (s *Server) handleRecordIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.RecordIncomeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Income handler not configured")
		return
	}

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid date", err.Error())
		return
	}

	cmd := command.RecordIncomeCommand{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.RecordIncomeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to record income", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to record income")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleCreateGoal handles POST /api/v1/finance/goals
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.CreateGoalHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Goal handler not configured")
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	var deadline *time.Time
	if req.Deadline != "" {
		d, err := timeutil.ParseDate(req.Deadline)
		if err != nil {
			writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid deadline", err.Error())
			return
		}
		deadline = &d
	}

	cmd := command.CreateGoalCommand{
		UserID:   userID,
		Name:     req.Name,
		Target:   req.Target,
		Deadline: deadline,
		Type:     finance.GoalType(req.Type),
	}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.CreateGoalHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to create goal", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleAddGoalProgress handles POST /api/v1/finance/goals/{id}/progress
func (s *Server) handleAddGoalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.AddGoalProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Goal handler not configured")
		return
	}

	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || goalID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Goal ID must be a positive integer")
		return
	}

	var req goalProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.AddGoalProgressCommand{
		UserID: userID,
		GoalID: goalID,
		Amount: req.Amount,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.AddGoalProgressHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to add goal progress", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to add goal progress")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetFinanceOverview handles GET /api/v1/finance/overview
func (s *Server) handleGetFinanceOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.GetFinanceOverviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Overview handler not configured")
		return
	}

	q := query.GetFinanceOverviewQuery{
		UserID:      userID,
		RecentLimit: getQueryParamInt(r, "limit", 10),
	}

	result, err := s.deps.GetFinanceOverviewHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get finance overview", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to get finance overview")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// EDUCATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type completeLessonRequest struct {
	QuizScore *int `json:"quiz_score,omitempty"`
}

// handleCompleteLesson handles POST /api/v1/lessons/{id}/complete
func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.CompleteLessonHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Lesson handler not configured")
		return
	}

	lessonID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || lessonID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Lesson ID must be a positive integer")
		return
	}

	// The body is optional: completing without a quiz sends no payload.
	var req completeLessonRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.CompleteLessonCommand{
		UserID:    userID,
		LessonID:  lessonID,
		QuizScore: req.QuizScore,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Validation failed", err.Error())
		return
	}

	result, err := s.deps.CompleteLessonHandler.Handle(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			writeJSONError(w, http.StatusConflict, "already_completed", "Lesson is already completed")
			return
		}
		s.logger.Error("failed to complete lesson", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to complete lesson")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetNotifications handles GET /api/v1/notifications
func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.GetNotificationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	q := query.GetNotificationsQuery{
		RecipientID: notification.RecipientID(userID.Int64()),
		Limit:       getQueryParamInt(r, "limit", 50),
		OnlyUnread:  getQueryParamBool(r, "only_unread"),
	}

	result, err := s.deps.GetNotificationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get notifications", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to get notifications")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.MarkNotificationReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	notificationID := r.PathValue("id")
	if notificationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Notification ID is required")
		return
	}

	cmd := command.MarkNotificationReadCommand{
		RecipientID:    notification.RecipientID(userID.Int64()),
		NotificationID: notification.NotificationID(notificationID),
	}

	if err := s.deps.MarkNotificationReadHandler.Handle(r.Context(), cmd); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Notification not found")
			return
		}
		s.logger.Error("failed to mark notification read", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to mark notification read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleMarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if s.deps.MarkNotificationReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	cmd := command.MarkNotificationReadCommand{
		RecipientID: notification.RecipientID(userID.Int64()),
		All:         true,
	}

	if err := s.deps.MarkNotificationReadHandler.Handle(r.Context(), cmd); err != nil {
		s.logger.Error("failed to mark notifications read", logger.Err(err), logger.UserID(userID.Int64()))
		s.writeDomainError(w, err, "Failed to mark notifications read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST PARSING AND ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON decodes a JSON request body with a 1MB limit.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

// parseOptionalDate parses "2006-01-02", defaulting to now in the app zone.
func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return timeutil.Now(), nil
	}
	return timeutil.ParseDate(value)
}

// writeDomainError maps domain errors to HTTP statuses. Anything
// unrecognized becomes a 500 with the fallback message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", fallback)
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", fallback)
	case errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", fallback)
	case errors.Is(err, shared.ErrAlreadyExists), errors.Is(err, shared.ErrAlreadyProcessed):
		writeJSONError(w, http.StatusConflict, "conflict", fallback)
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidFormat),
		errors.Is(err, shared.ErrValueOutOfRange),
		errors.Is(err, shared.ErrEmptyValue):
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", fallback, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
