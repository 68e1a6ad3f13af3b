package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type config struct {
	Production       bool          `env:"PRODUCTION" envDefault:"false"`
	Port             string        `env:"PORT" envDefault:"80"`
	PostgresUrl      string        `env:"POSTGRES_URL,required"`
	RedisUrl         string        `env:"REDIS_URL"`
	JwtSecret        string        `env:"JWT_SECRET,required"`
	ExpansionHorizon time.Duration `env:"EXPANSION_HORIZON" envDefault:"8760h"`
	MaxInstances     int           `env:"MAX_INSTANCES" envDefault:"500"`
	DoctorSchedule   string        `env:"DOCTOR_SCHEDULE" envDefault:"@every 1h"`
	DoctorRepair     bool          `env:"DOCTOR_REPAIR" envDefault:"false"`
	PushEnabled      bool          `env:"PUSH_ENABLED" envDefault:"true"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

var conf config

func init() {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func JwtSecret() string {
	return conf.JwtSecret
}

// ExpansionHorizon bounds recurring events that have no end date.
func ExpansionHorizon() time.Duration {
	return conf.ExpansionHorizon
}

func MaxInstances() int {
	return conf.MaxInstances
}

func DoctorSchedule() string {
	return conf.DoctorSchedule
}

func DoctorRepair() bool {
	return conf.DoctorRepair
}

func PushEnabled() bool {
	return conf.PushEnabled
}

func ShutdownTimeout() time.Duration {
	return conf.ShutdownTimeout
}
