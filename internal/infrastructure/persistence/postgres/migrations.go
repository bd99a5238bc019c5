// Package postgres implements the PostgreSQL persistence layer for FinZen.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

-- Shared trigger function for updated_at maintenance
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;
`

const migration001Down = `
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE FINANCE
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create finance tables
-- Version: 002
-- Purpose: Raw transactional records (expenses, incomes, savings goals).
-- The gamification engine reads these tables but never writes them.

CREATE TABLE IF NOT EXISTS expenses (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount NUMERIC(12,2) NOT NULL,
    category VARCHAR(30) NOT NULL DEFAULT 'otros',
    description TEXT NOT NULL DEFAULT '',
    date DATE NOT NULL DEFAULT CURRENT_DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_expense_amount CHECK (amount > 0),
    CONSTRAINT valid_expense_category CHECK (category IN (
        'comida', 'transporte', 'educacion', 'entretenimiento', 'salud', 'otros'
    ))
);

CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date DESC);

CREATE TABLE IF NOT EXISTS incomes (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount NUMERIC(12,2) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date DATE NOT NULL DEFAULT CURRENT_DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_income_amount CHECK (amount > 0)
);

CREATE INDEX IF NOT EXISTS idx_incomes_user ON incomes(user_id);
CREATE INDEX IF NOT EXISTS idx_incomes_user_date ON incomes(user_id, date DESC);

CREATE TABLE IF NOT EXISTS goals (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    target NUMERIC(12,2) NOT NULL,
    current NUMERIC(12,2) NOT NULL DEFAULT 0,
    deadline DATE,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    type VARCHAR(20) NOT NULL DEFAULT 'saving',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_goal_target CHECK (target > 0),
    CONSTRAINT non_negative_goal_current CHECK (current >= 0),
    CONSTRAINT valid_goal_type CHECK (type IN ('saving', 'spending_limit'))
);

CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_goals_user_deadline ON goals(user_id, deadline) WHERE deadline IS NOT NULL;

DROP TRIGGER IF EXISTS update_goals_updated_at ON goals;
CREATE TRIGGER update_goals_updated_at
    BEFORE UPDATE ON goals
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration002Down = `
DROP TRIGGER IF EXISTS update_goals_updated_at ON goals;
DROP TABLE IF EXISTS goals;
DROP TABLE IF EXISTS incomes;
DROP TABLE IF EXISTS expenses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE GAMIFICATION
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create gamification tables
-- Version: 003
-- Purpose: Derived progress state - profiles, challenge progress, badges,
-- lesson completions. The engine is the sole writer of these tables.

-- One progress profile per user, created lazily with zero values
CREATE TABLE IF NOT EXISTS progress_profiles (
    user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    points INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    current_streak INTEGER NOT NULL DEFAULT 0,
    best_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT non_negative_points CHECK (points >= 0),
    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT non_negative_streaks CHECK (current_streak >= 0 AND best_streak >= 0),
    CONSTRAINT best_streak_bound CHECK (best_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_progress_profiles_points ON progress_profiles(points DESC);

-- Per-user challenge progress; completed is monotonic, the reward is issued
-- exactly once on the false -> true transition
CREATE TABLE IF NOT EXISTS user_challenges (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    challenge_id INTEGER NOT NULL,
    progress DOUBLE PRECISION NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,

    PRIMARY KEY (user_id, challenge_id),
    CONSTRAINT non_negative_progress CHECK (progress >= 0),
    CONSTRAINT completed_has_timestamp CHECK (NOT completed OR completed_at IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_user_challenges_user ON user_challenges(user_id);

-- Earned badges; row existence = badge earned, rows are never deleted
CREATE TABLE IF NOT EXISTS user_badges (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    badge_id INTEGER NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id);

-- Lesson completions; a lesson counts once per user
CREATE TABLE IF NOT EXISTS lesson_completions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    lesson_id INTEGER NOT NULL,
    quiz_score INTEGER,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE (user_id, lesson_id),
    CONSTRAINT valid_quiz_score CHECK (quiz_score IS NULL OR (quiz_score >= 0 AND quiz_score <= 100))
);

CREATE INDEX IF NOT EXISTS idx_lesson_completions_user ON lesson_completions(user_id);

DROP TRIGGER IF EXISTS update_progress_profiles_updated_at ON progress_profiles;
CREATE TRIGGER update_progress_profiles_updated_at
    BEFORE UPDATE ON progress_profiles
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration003Down = `
DROP TRIGGER IF EXISTS update_progress_profiles_updated_at ON progress_profiles;
DROP TABLE IF EXISTS lesson_completions;
DROP TABLE IF EXISTS user_badges;
DROP TABLE IF EXISTS user_challenges;
DROP TABLE IF EXISTS progress_profiles;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE NOTIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create notifications table
-- Version: 004
-- Purpose: Append-only notification feed with read state

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type VARCHAR(30) NOT NULL,
    priority SMALLINT NOT NULL DEFAULT 2,
    title TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    read_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_priority CHECK (priority BETWEEN 1 AND 3),
    CONSTRAINT valid_notification_type CHECK (type IN (
        'challenge_completed', 'level_up', 'badge_earned', 'streak_milestone',
        'goal_progress', 'lesson_completed', 'welcome', 'system_alert'
    ))
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE is_read = FALSE;
`

const migration004Down = `
DROP TABLE IF EXISTS notifications;
`
