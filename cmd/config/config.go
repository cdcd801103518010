package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "thermo_server"

	_defaultPort           = 5000
	_defaultLogLevel       = "info"
	_defaultFromName       = "Thermo Server"
	_defaultEmailTimeout   = 10 * time.Second
	_defaultMQTTTopic      = "sensors/temperature"
	_defaultConfigFileName = "server"
)

var _emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	loadConfigOnce sync.Once
	configInstance AppConfig
	configErr      error
)

// LoadConfig reads the configuration once per process.
func LoadConfig(flags *pflag.FlagSet) (AppConfig, error) {
	loadConfigOnce.Do(func() {
		configInstance, configErr = Load(viper.New(), flags)
	})

	return configInstance, configErr
}

// RegisterFlags adds the command line overrides understood by Load.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int("port", _defaultPort, "port the HTTP server listens on")
	flags.String("log-level", _defaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("config", "", "path to a configuration file")
}

// Load resolves the configuration from, in order of precedence, command line
// flags, environment variables, the optional config file and defaults.
// Credentials have no default: an absent key leaves the feature unconfigured.
func Load(v *viper.Viper, flags *pflag.FlagSet) (AppConfig, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("general.log_level", _defaultLogLevel)
	v.SetDefault("server.port", _defaultPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("mailersend.from_name", _defaultFromName)
	v.SetDefault("mailersend.timeout", _defaultEmailTimeout)
	v.SetDefault("mqtt.topic", _defaultMQTTTopic)

	if err := v.BindEnv("server.port", "THERMO_SERVER_SERVER_PORT", "PORT"); err != nil {
		return AppConfig{}, fmt.Errorf("binding port environment: %w", err)
	}

	configFile := ""
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return AppConfig{}, err
		}
		configFile, _ = flags.GetString("config")
	}

	if err := readConfigFile(v, configFile); err != nil {
		return AppConfig{}, err
	}

	config := AppConfig{
		General: GeneralConfig{
			LogLevel: v.GetString("general.log_level"),
		},
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		MailerSend: MailerSendConfig{
			APIKey:    v.GetString("mailersend.api_key"),
			FromEmail: v.GetString("mailersend.from_email"),
			FromName:  v.GetString("mailersend.from_name"),
			Timeout:   v.GetDuration("mailersend.timeout"),
		},
		Alert: AlertConfig{
			Recipient: v.GetString("alert.recipient"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("mqtt.broker"),
			ClientID: v.GetString("mqtt.client_id"),
			Username: v.GetString("mqtt.username"),
			Password: v.GetString("mqtt.password"),
			Topic:    v.GetString("mqtt.topic"),
		},
	}

	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}

	return config, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"server.port":       "port",
		"general.log_level": "log-level",
	}

	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(_defaultConfigFileName)
	v.AddConfigPath("config")
	v.AddConfigPath("/config")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}

type AppConfig struct {
	General    GeneralConfig
	Server     ServerConfig
	MailerSend MailerSendConfig
	Alert      AlertConfig
	MQTT       MQTTConfig
}

func (c AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.MailerSend.Timeout <= 0 {
		return fmt.Errorf("invalid mailersend timeout %s", c.MailerSend.Timeout)
	}
	if err := validateOptionalEmail("alert.recipient", c.Alert.Recipient); err != nil {
		return err
	}
	return validateOptionalEmail("mailersend.from_email", c.MailerSend.FromEmail)
}

// validateOptionalEmail accepts an empty value. Unset addresses leave alerts
// unconfigured instead of failing startup.
func validateOptionalEmail(key, email string) error {
	if email == "" || _emailRegex.MatchString(email) {
		return nil
	}
	return fmt.Errorf("invalid email format '%s' for %s", email, key)
}

type GeneralConfig struct {
	LogLevel string
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

type MailerSendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// Configured reports whether alert emails can be attempted at all.
func (c MailerSendConfig) Configured() bool {
	return c.APIKey != ""
}

type AlertConfig struct {
	Recipient string
}

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}
