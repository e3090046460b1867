// SPDX-License-Identifier: MIT

// Package config loads the quikdel configuration.
//
// Values are resolved in order: defaults → YAML file → .env file →
// environment variables (prefix QUIKDEL, e.g. QUIKDEL_NETWORK_RATIO), and the
// result is checked with struct validation tags.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("quikdel.yaml").
//	    WithDotEnv(".env").
//	    Load()
package config

// Config is the complete configuration.
type Config struct {
	Network    NetworkConfig    `yaml:"network" env:"NETWORK"`
	MDP        MDPConfig        `yaml:"mdp" env:"MDP"`
	Training   TrainingConfig   `yaml:"training" env:"TRAINING"`
	Simulation SimulationConfig `yaml:"simulation" env:"SIMULATION"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
	Store      StoreConfig      `yaml:"store" env:"STORE"`
}

// NetworkConfig drives network construction.
type NetworkConfig struct {
	Ratio            float64    `yaml:"ratio" env:"RATIO" validate:"gte=1"`
	MinChildren      int        `yaml:"min_children" env:"MIN_CHILDREN" validate:"gte=1"`
	SpacingThreshold float64    `yaml:"spacing_threshold" env:"SPACING_THRESHOLD" validate:"gte=0"`
	CapacitySlack    float64    `yaml:"capacity_slack" env:"CAPACITY_SLACK" validate:"gte=1"`
	Normalization    string     `yaml:"normalization" env:"NORMALIZATION" validate:"oneof=minmax zscore"`
	SESWeights       SESWeights `yaml:"ses_weights" env:"SES_WEIGHTS"`
}

// SESWeights weights the socio-economic score components.
type SESWeights struct {
	Producers float64 `yaml:"producers" env:"PRODUCERS" validate:"gte=0"`
	Consumers float64 `yaml:"consumers" env:"CONSUMERS" validate:"gte=0"`
	Bordering float64 `yaml:"bordering" env:"BORDERING" validate:"gte=0"`
}

// MDPConfig drives process formulation.
type MDPConfig struct {
	Neighbors    int     `yaml:"neighbors" env:"NEIGHBORS" validate:"gte=1"`
	Window       int     `yaml:"window" env:"WINDOW" validate:"gte=1"`
	ArrivalBonus float64 `yaml:"arrival_bonus" env:"ARRIVAL_BONUS" validate:"gte=0"`
	Cost         string  `yaml:"cost" env:"COST" validate:"oneof=distance time"`
}

// TrainingConfig drives Q-learning. Workers 0 means GOMAXPROCS.
type TrainingConfig struct {
	Alpha           float64 `yaml:"alpha" env:"ALPHA" validate:"gt=0,lte=1"`
	Gamma           float64 `yaml:"gamma" env:"GAMMA" validate:"gte=0,lte=1"`
	Episodes        int     `yaml:"episodes" env:"EPISODES" validate:"gte=1"`
	TemperatureInit float64 `yaml:"temperature_init" env:"TEMPERATURE_INIT" validate:"gt=0"`
	DecayRate       float64 `yaml:"decay_rate" env:"DECAY_RATE" validate:"gt=0,lte=1"`
	MinTemperature  float64 `yaml:"min_temperature" env:"MIN_TEMPERATURE" validate:"gt=0,ltefield=TemperatureInit"`
	MaxSteps        int     `yaml:"max_steps" env:"MAX_STEPS" validate:"gte=1"`
	Seed            uint64  `yaml:"seed" env:"SEED"`
	Workers         int     `yaml:"workers" env:"WORKERS" validate:"gte=0"`
}

// SimulationConfig drives request generation and execution.
type SimulationConfig struct {
	TotalDeliveries    int     `yaml:"total_deliveries" env:"TOTAL_DELIVERIES" validate:"gte=0"`
	Horizon            float64 `yaml:"horizon" env:"HORIZON" validate:"gt=0"`
	Tick               float64 `yaml:"tick" env:"TICK" validate:"gt=0"`
	RideSharing        bool    `yaml:"ride_sharing" env:"RIDE_SHARING"`
	RideShareThreshold float64 `yaml:"ride_share_threshold" env:"RIDE_SHARE_THRESHOLD" validate:"gte=0,lte=1"`
	TimeWindow         float64 `yaml:"time_window" env:"TIME_WINDOW" validate:"gte=0"`
	PASSize            int     `yaml:"pas_size" env:"PAS_SIZE" validate:"gte=1"`
	Workers            int     `yaml:"workers" env:"WORKERS" validate:"gte=1"`
	ReleaseFraction    float64 `yaml:"release_fraction" env:"RELEASE_FRACTION" validate:"gt=0,lte=1"`
	DeadlineSlack      float64 `yaml:"deadline_slack" env:"DEADLINE_SLACK" validate:"gte=0"`
	DeadlineBase       float64 `yaml:"deadline_base" env:"DEADLINE_BASE" validate:"gte=0"`
	Seed               uint64  `yaml:"seed" env:"SEED"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format           string   `yaml:"format" env:"FORMAT" validate:"oneof=json console"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" validate:"min=1"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// StoreConfig locates the artifact database; an empty Path disables it.
type StoreConfig struct {
	Path string `yaml:"path" env:"PATH"`
}
