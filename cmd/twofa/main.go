package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iceymoss/go-2fa/internal/conf"
	twofa "github.com/iceymoss/go-2fa/pkg/2fa"
	"github.com/iceymoss/go-2fa/pkg/2fa/envelope"
	"github.com/iceymoss/go-2fa/pkg/2fa/provision"
	"github.com/iceymoss/go-2fa/pkg/2fa/totp"
	"github.com/iceymoss/go-2fa/pkg/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `usage: twofa [--config path] [--verbose] <command> [flags]

commands:
  keygen                         生成 base64 编码的32字节加密密钥 (TWOFA_ENCRYPTION_KEY)
  secret  --email [--issuer]     生成共享密钥并输出 otpauth URI 和加密后的信封
  code    --secret               输出当前验证码和剩余秒数
  verify  --secret --code        验证验证码（--envelope 可代替 --secret）
  encrypt --secret               加密共享密钥
  decrypt --envelope             解密信封

取值为 "-" 的参数从标准输入读取一行。`

var errInvalidCode = errors.New("invalid code")

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	logger.Sync()
	if errors.Is(err, errInvalidCode) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("❌ twofa error", zap.Error(err))
	}
}

type app struct {
	cfg    *conf.Config
	stdin  *bufio.Reader
	stdout io.Writer
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("twofa", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	configPath := fs.StringP("config", "c", "", "YAML 配置文件路径，为空时只读环境变量")
	verbose := fs.BoolP("verbose", "v", false, "输出 debug 日志")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if *verbose {
		logger.SetLevel(zap.DebugLevel)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	a := &app{stdin: bufio.NewReader(stdin), stdout: stdout}
	cmd, cmdArgs := rest[0], rest[1:]

	// keygen 不需要任何配置
	if cmd == "keygen" {
		return a.keygen()
	}

	cfg, err := conf.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	switch cmd {
	case "secret":
		return a.secret(cmdArgs)
	case "code":
		return a.code(cmdArgs)
	case "verify":
		return a.verify(cmdArgs)
	case "encrypt":
		return a.encrypt(cmdArgs)
	case "decrypt":
		return a.decrypt(cmdArgs)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// service 按配置构建门面，密钥派生失败时直接返回错误
func (a *app) service() (*twofa.Service, error) {
	cipher, err := envelope.NewCipherFromConfig(a.cfg.KeyConfig())
	if err != nil {
		return nil, err
	}
	return twofa.New(cipher,
		twofa.WithIssuer(a.cfg.TwoFA.Issuer),
		twofa.WithTOTP(totp.New(totp.WithWindow(a.cfg.TwoFA.Window))),
	), nil
}

// value 处理 "-"：从标准输入读取一行
func (a *app) value(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	line, err := a.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) required(fs *pflag.FlagSet, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		raw, err := fs.GetString(name)
		if err != nil {
			return nil, err
		}
		v, err := a.value(raw)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, fmt.Errorf("--%s is required", name)
		}
		out[name] = v
	}
	return out, nil
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) keygen() error {
	key, err := envelope.GenerateEncodedKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, key)
	return err
}

func (a *app) secret(args []string) error {
	fs := newFlagSet("secret")
	fs.String("email", "", "账户标识")
	issuer := fs.String("issuer", "", "发行者，默认取配置 twofa.issuer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	vals, err := a.required(fs, "email")
	if err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}
	secret, err := svc.GenerateSecret()
	if err != nil {
		return err
	}
	env, err := svc.EncryptSecret(secret)
	if err != nil {
		return err
	}

	uri := svc.BuildOtpAuthURL(provision.Params{Issuer: *issuer, Email: vals["email"], Secret: secret})
	_, err = fmt.Fprintf(a.stdout, "secret:   %s\nurl:      %s\nenvelope: %s\n", secret, uri, env)
	return err
}

func (a *app) code(args []string) error {
	fs := newFlagSet("code")
	fs.String("secret", "", "Base32 共享密钥")
	if err := fs.Parse(args); err != nil {
		return err
	}
	vals, err := a.required(fs, "secret")
	if err != nil {
		return err
	}

	t := totp.New()
	code := t.GenerateCode(vals["secret"])
	if code == "" {
		return errors.New("secret decodes to an empty key")
	}
	_, err = fmt.Fprintf(a.stdout, "%s (%ds)\n", code, t.RemainingSeconds())
	return err
}

func (a *app) verify(args []string) error {
	fs := newFlagSet("verify")
	fs.String("secret", "", "Base32 共享密钥")
	fs.String("envelope", "", "加密后的共享密钥")
	fs.String("code", "", "6位验证码")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}

	source := "secret"
	if fs.Changed("envelope") {
		source = "envelope"
	}
	vals, err := a.required(fs, source, "code")
	if err != nil {
		return err
	}

	secret := vals[source]
	if source == "envelope" {
		if secret, err = svc.DecryptSecret(secret); err != nil {
			return err
		}
	}

	if !svc.VerifyCode(twofa.VerifyParams{Code: vals["code"], Secret: secret}) {
		return errInvalidCode
	}
	_, err = fmt.Fprintln(a.stdout, "valid")
	return err
}

func (a *app) encrypt(args []string) error {
	fs := newFlagSet("encrypt")
	fs.String("secret", "", "Base32 共享密钥")
	if err := fs.Parse(args); err != nil {
		return err
	}
	vals, err := a.required(fs, "secret")
	if err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}
	env, err := svc.EncryptSecret(vals["secret"])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, env)
	return err
}

func (a *app) decrypt(args []string) error {
	fs := newFlagSet("decrypt")
	fs.String("envelope", "", "加密后的共享密钥")
	if err := fs.Parse(args); err != nil {
		return err
	}
	vals, err := a.required(fs, "envelope")
	if err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}
	secret, err := svc.DecryptSecret(vals["envelope"])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, secret)
	return err
}
