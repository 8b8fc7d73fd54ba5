package api

import (
	"sync"

	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	RedisConfig
	ServerConfig
}

type StorageConfig struct {
	TableNameStages      string
	TableNameTeams       string
	TableNameProgress    string
	TableNameBugs        string
	TableNameBugTypes    string
	TableNameSubmissions string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type ServerConfig struct {
	Port int
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNameStages:      viper.GetString("storage.TableNameStages"),
			TableNameTeams:       viper.GetString("storage.TableNameTeams"),
			TableNameProgress:    viper.GetString("storage.TableNameProgress"),
			TableNameBugs:        viper.GetString("storage.TableNameBugs"),
			TableNameBugTypes:    viper.GetString("storage.TableNameBugTypes"),
			TableNameSubmissions: viper.GetString("storage.TableNameSubmissions"),
		},
		RedisConfig: RedisConfig{
			RedisAddr:     viper.GetString("redis.addr"),
			RedisPassword: viper.GetString("redis.password"),
			RedisDB:       viper.GetInt("redis.db"),
		},
		ServerConfig: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}
