package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
//
// Gamification is motivational by design: flags let us tune which rewards
// and notifications reach users without redeploying, and roll risky
// mechanics out to a percentage of users first.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[int64]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  int64
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Leaderboard Features ===
	FeatureLeaderboardCache   = "leaderboard.cache"   // Serve the top from the redis projection
	FeatureLeaderboardStreaks = "leaderboard.streaks" // Show current streaks in the ranking

	// === Notification Features ===
	FeatureNotifyLevelUp       = "notify.level_up"        // "¡Nivel Alcanzado!"
	FeatureNotifyChallengeDone = "notify.challenge_done"  // "¡Reto Completado!"
	FeatureNotifyBadgeEarned   = "notify.badge_earned"    // "¡Nueva Insignia!"
	FeatureNotifyStreakBonus   = "notify.streak_bonus"    // "¡Racha Semanal!"
	FeatureNotifyGoalAlmost    = "notify.goal_almost"     // "¡Casi lo logras!" at 80%
	FeatureNotifyWelcome       = "notify.welcome"         // Welcome message on registration

	// === Gamification Features ===
	FeatureGamificationStreaks    = "gamification.streaks"    // Daily activity streaks
	FeatureGamificationChallenges = "gamification.challenges" // Challenge catalog
	FeatureGamificationBadges     = "gamification.badges"     // Badge catalog

	// === Experimental Features ===
	FeatureExperimentalQuizzes = "experimental.lesson_quizzes" // Quiz scores on lessons
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLeaderboardCache] = &Feature{
		Name:           FeatureLeaderboardCache,
		Description:    "Serve leaderboard from the redis projection",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardStreaks] = &Feature{
		Name:           FeatureLeaderboardStreaks,
		Description:    "Show streaks in leaderboard rows",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Notifications - tuned for motivation, not spam
	ff.features[FeatureNotifyLevelUp] = &Feature{
		Name:           FeatureNotifyLevelUp,
		Description:    "Notify on level up",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyChallengeDone] = &Feature{
		Name:           FeatureNotifyChallengeDone,
		Description:    "Notify when a challenge completes",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyBadgeEarned] = &Feature{
		Name:           FeatureNotifyBadgeEarned,
		Description:    "Notify when a badge is earned",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyStreakBonus] = &Feature{
		Name:           FeatureNotifyStreakBonus,
		Description:    "Notify on weekly streak bonus",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyGoalAlmost] = &Feature{
		Name:           FeatureNotifyGoalAlmost,
		Description:    "Nudge when a goal reaches 80%",
		Enabled:        true,
		RolloutPercent: 50, // A/B test
	}

	ff.features[FeatureNotifyWelcome] = &Feature{
		Name:           FeatureNotifyWelcome,
		Description:    "Welcome message after registration",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Gamification core - enabled by default
	ff.features[FeatureGamificationStreaks] = &Feature{
		Name:           FeatureGamificationStreaks,
		Description:    "Track daily activity streaks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureGamificationChallenges] = &Feature{
		Name:           FeatureGamificationChallenges,
		Description:    "Challenge catalog and rewards",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureGamificationBadges] = &Feature{
		Name:           FeatureGamificationBadges,
		Description:    "Badge catalog",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalQuizzes] = &Feature{
		Name:           FeatureExperimentalQuizzes,
		Description:    "Quiz scores on lesson completions",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_NOTIFY_GOAL_ALMOST=true
// Example: FEATURE_NOTIFY_GOAL_ALMOST=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "notify.goal_almost" -> "FEATURE_NOTIFY_GOAL_ALMOST"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
