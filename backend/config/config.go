package config

type Config struct {
	Running struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"running"`
	Room struct {
		Default string `mapstructure:"default"`
	} `mapstructure:"room"`
	Client struct {
		Dir       string `mapstructure:"dir"`
		SocketURL string `mapstructure:"socketUrl"`
	} `mapstructure:"client"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
}
