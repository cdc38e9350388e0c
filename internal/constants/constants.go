package constants

// Centralized constants for env keys, provider integration, violation
// reasons and log fields.
const (
	// Environment variable keys
	EnvBattleConfig = "BATTLE_CONFIG"
	EnvBattleDB     = "BATTLE_DB"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"

	EnvHealthcheckURL = "BATTLE_HEALTHCHECK_URL"

	DefaultConfigPath     = "./battle.yaml"
	DefaultDBPath         = "./data/battles.db"
	DefaultHealthcheckURL = "http://127.0.0.1:9090/healthz"

	// Metrics listener routes
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"
	BearerPrefix        = "Bearer "

	// OpenAI-compatible chat completions
	OpenAIBaseURL             = "https://api.openai.com/v1"
	OpenAIChatCompletionsPath = "/chat/completions"
	OpenAIChatModel           = "gpt-4o-mini"

	GeminiChatModel = "gemini-2.5-flash"

	// Action provider kinds
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderScripted = "scripted"

	// Agent defaults
	AgentDefaultTemperature  = 0.1
	AgentDefaultMaxTokens    = 512
	AgentMaxThinkingRounds   = 5
	AgentRequestTimeoutSecs  = 60
	AgentThinkingToolResult  = "ok"
	AgentThinkingToolName    = "thinking"
	AgentUseSkillToolName    = "useSkill"
	AgentThinkingToolDesc    = "Reason about the current game state and plan your move"
	AgentUseSkillToolDesc    = "Use a skill during your turn"
	AgentThinkingContentDesc = "Your reasoning and strategy thoughts"
	AgentUseSkillSkillDesc   = "The skill to use this turn"

	// Battle runner defaults
	DefaultMaxTurns             = 50
	DefaultMaxConcurrentBattles = 2
)

// Violation reasons recorded on TurnResult and ViolationLog.
const (
	ViolationNoSkill        = "No skill used"
	ViolationMultipleSkills = "Multiple skills used in one turn"
	ViolationSkillMissing   = "Skill name missing"
	ViolationUnknownSkill   = "Unknown skill: %s"
	ViolationInsufficientMP = "Insufficient MP: %d < %d"
	ViolationCooldown       = "Skill on cooldown: %d turns remaining"
)

// Logging field names
const (
	LogFieldBattleID  = "battle_id"
	LogFieldTurn      = "turn"
	LogFieldPlayer    = "player"
	LogFieldSkill     = "skill"
	LogFieldViolation = "violation"
	LogFieldWinner    = "winner"
	LogFieldAgent     = "agent"
	LogFieldProvider  = "provider"
	LogFieldTokens    = "tokens"
	LogFieldAddr      = "addr"
	LogFieldPath      = "path"
)
