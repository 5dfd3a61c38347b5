package config

import "time"

// UI
const (
	CardsPerPage = 10

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Database and performance
const (
	DefaultQueryTimeout     = 10 * time.Second
	TransactionTimeout      = 15 * time.Second
	SearchTimeout           = 5 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	AnnounceTimeout         = 5 * time.Second
	ArtworkFetchTimeout     = 10 * time.Second

	GuildSettingsCacheSize = 1024
)

// Economy defaults, overridable from the [economy] config section.
const (
	DefaultDropSize          = 3
	DefaultDropCooldownS     = 30
	DefaultClaimWindowS      = 60
	DefaultUserDropCooldownS = 600
	DefaultGrabCooldownS     = 300
	DefaultDailyCooldownS    = 86400

	DefaultDailyCoinsMin = 100
	DefaultDailyCoinsMax = 250
	DefaultDailyGemsMin  = 1
	DefaultDailyGemsMax  = 5

	DefaultDyeThickness = 8
	MinDyeThickness     = 1
	MaxDyeThickness     = 32

	// Cards minted in one drop retry this many times on a uid or print collision.
	MaxMintAttempts = 20
)

var DefaultRarityWeights = []float64{40, 30, 18, 9, 3}

// Timer keys stored in user_timers.
const (
	TimerDrop  = "drop"
	TimerGrab  = "grab"
	TimerDaily = "daily"
)
