package args

import "flag"

var (
	configFilePath string
	production     bool
)

func Init() {
	flag.StringVar(&configFilePath, "config", "", "path to the yaml config file")
	flag.BoolVar(&production, "production", false, "run in production mode")
	flag.Parse()
}

func ConfigFilePath() string {
	return configFilePath
}

func IsProduction() bool {
	return production
}
