package main

import "time"

type Config struct {
	SQLitePath      string        `env:"SQLITE_PATH,required=true"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	BufferSize      int           `env:"BUFFER_SIZE,default=256"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL,default=1m"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
}
