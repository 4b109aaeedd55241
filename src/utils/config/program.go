package config

import (
	"github.com/spf13/viper"
)

type Program struct {
	// Base58 address the crowdfunding program is deployed under
	Id string
}

func setProgramDefaults() {
	viper.SetDefault("Program.Id", "FjW5aagpT2TbMXyPeah4C2GPdkfDJizQ6RY8RAFfGK2U")
}
