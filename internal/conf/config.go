package conf

import (
	"os"
	"strings"

	"github.com/iceymoss/go-2fa/pkg/2fa/envelope"
	"github.com/iceymoss/go-2fa/pkg/2fa/totp"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env   string      `mapstructure:"env" env:"APP_ENV" envDefault:"development"`
	TwoFA TwoFAConfig `mapstructure:"twofa"`
	JWT   JWTConfig   `mapstructure:"jwt"`
}

type TwoFAConfig struct {
	Issuer        string `mapstructure:"issuer" env:"TWOFA_ISSUER"`
	EncryptionKey string `mapstructure:"encryption_key" env:"TWOFA_ENCRYPTION_KEY"` // hex/base64 的32字节密钥或口令
	StrictKey     bool   `mapstructure:"strict_key" env:"TWOFA_STRICT_KEY"`         // 拒绝非32字节的密钥材料
	Window        int    `mapstructure:"window" env:"TWOFA_WINDOW" envDefault:"1"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret" env:"JWT_SECRET"`
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return envelope.IsProductionEnv(c.Env)
}

// KeyConfig 生成加密密钥派生配置，环境标记在这里显式传给密文模块
func (c *Config) KeyConfig() envelope.KeyConfig {
	return envelope.KeyConfig{
		Material:       c.TwoFA.EncryptionKey,
		FallbackSecret: c.JWT.Secret,
		Production:     c.IsProduction(),
		Strict:         c.TwoFA.StrictKey,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("twofa.issuer", "")
	v.SetDefault("twofa.encryption_key", "")
	v.SetDefault("twofa.strict_key", false)
	v.SetDefault("twofa.window", totp.DefaultWindow)
	v.SetDefault("jwt.secret", "")
}

// LoadConfig 加载配置
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	// twofa.encryption_key -> TWOFA_ENCRYPTION_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // 自动读取环境变量
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 显式展开 YAML 中的 ${VAR}
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromEnv 只从环境变量加载配置，当前目录存在 .env 时先加载它
func LoadFromEnv() (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load 配置文件路径非空时读取文件，否则只读环境变量
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	return LoadConfig(path)
}
