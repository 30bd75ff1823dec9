package models

// DailyStats is the aggregate served by GET /api/stats
type DailyStats struct {
	TotalPomodoros int       `json:"total_pomodoros"`
	TotalMinutes   float64   `json:"total_minutes"`
	Sessions       []Session `json:"sessions"`
}

// WeeklyInsights summarizes one Monday-to-Sunday week
type WeeklyInsights struct {
	WeekStart           string             `json:"week_start"`
	WeekEnd             string             `json:"week_end"`
	FocusMinutes        float64            `json:"focus_minutes"`
	Sessions            int                `json:"sessions"`
	Modes               map[string]int     `json:"modes"`
	TasksCompleted      int                `json:"tasks_completed"`
	TasksCreated        int                `json:"tasks_created"`
	CreatedAndCompleted int                `json:"created_and_completed"`
	CompletionRate      *int               `json:"completion_rate"`
	Allocation          map[string]float64 `json:"allocation"`
}
