package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/kennyg/lmagent/internal/artifact"
)

// User config:    ~/.config/lmagent/config.yaml (or $XDG_CONFIG_HOME/lmagent/)
// Project config: .lmagent/config.yaml (in the project root)

const (
	// AppName is used for the config dir and env prefix
	AppName = "lmagent"
	// FrameworkVersion is the skill format version this build writes and expects
	FrameworkVersion = "3.0.11"
	// ConfigName is the viper config file name (without extension)
	ConfigName = "config"
	// ProjectConfigDir is the per-project config directory
	ProjectConfigDir = ".lmagent"
	// ProfilesFile holds user-defined tool profiles
	ProfilesFile = "tools.toml"
)

// Config keys
const (
	KeySource       = "source"
	KeyMethod       = "method"
	KeyDefaultTool  = "default_tool"
	KeyProfilesFile = "profiles_file"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
)

// Method is how content is placed into a tool directory
type Method string

const (
	MethodSymlink Method = "symlink"
	MethodCopy    Method = "copy"
)

// ParseMethod validates a method name
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodSymlink, MethodCopy:
		return m, nil
	case "":
		return MethodSymlink, nil
	default:
		return "", errors.Errorf("unknown install method %q (want symlink or copy)", s)
	}
}

// Settings is the resolved runtime configuration
type Settings struct {
	Source       string
	Method       Method
	DefaultTool  Tool
	ProfilesFile string
	LogLevel     string
	LogFormat    string
}

// Init wires viper: env vars prefixed LMAGENT_, then an explicit config
// file or config.yaml from the user and project config dirs. A missing
// config file is not an error.
func Init(cfgFile string) error {
	viper.SetEnvPrefix(strings.ToUpper(AppName))
	viper.AutomaticEnv()

	viper.SetDefault(KeyMethod, string(MethodSymlink))
	viper.SetDefault(KeyDefaultTool, string(DefaultTool))
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "fmt")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return errors.Wrap(viper.ReadInConfig(), "failed to read config file")
	}

	viper.SetConfigName(ConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(".", ProjectConfigDir))
	if dir, err := UserConfigDir(); err == nil {
		viper.AddConfigPath(dir)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load returns the current settings from viper
func Load() (*Settings, error) {
	method, err := ParseMethod(viper.GetString(KeyMethod))
	if err != nil {
		return nil, err
	}
	return &Settings{
		Source:       viper.GetString(KeySource),
		Method:       method,
		DefaultTool:  Tool(viper.GetString(KeyDefaultTool)),
		ProfilesFile: viper.GetString(KeyProfilesFile),
		LogLevel:     viper.GetString(KeyLogLevel),
		LogFormat:    viper.GetString(KeyLogFormat),
	}, nil
}

// UserConfigDir returns ~/.config/lmagent (or $XDG_CONFIG_HOME/lmagent)
func UserConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName), nil
}

// Paths holds the directories a run operates on
type Paths struct {
	// Home is the user's home directory
	Home string
	// ProjectRoot is the installation root for project installs
	ProjectRoot string
	// ContentRoot holds skills/, rules/ and workflows/ to install from
	ContentRoot string
	// UserConfigDir is ~/.config/lmagent
	UserConfigDir string
}

// ResolvePaths resolves the project and content roots. An empty root means
// the working directory. An empty source falls back to <root>/.agents when
// it carries skills, then to ~/.agents.
func ResolvePaths(root, source string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve home directory")
	}

	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, errors.Wrap(err, "failed to resolve working directory")
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "invalid project root")
	}

	userConfigDir, err := UserConfigDir()
	if err != nil {
		return nil, err
	}

	content, err := resolveContentRoot(home, root, source)
	if err != nil {
		return nil, err
	}

	return &Paths{
		Home:          home,
		ProjectRoot:   root,
		ContentRoot:   content,
		UserConfigDir: userConfigDir,
	}, nil
}

func resolveContentRoot(home, root, source string) (string, error) {
	if source != "" {
		if strings.HasPrefix(source, "~/") {
			source = filepath.Join(home, source[2:])
		}
		abs, err := filepath.Abs(source)
		return abs, errors.Wrap(err, "invalid content source")
	}

	local := filepath.Join(root, artifact.ContentDirName)
	if info, err := os.Stat(filepath.Join(local, artifact.SkillsDirName)); err == nil && info.IsDir() {
		return local, nil
	}
	return filepath.Join(home, artifact.ContentDirName), nil
}

// SourceDir returns the content-root subdirectory for a type
func (p *Paths) SourceDir(t artifact.Type) string {
	return filepath.Join(p.ContentRoot, t.DirName())
}

// ProfilesPath returns the custom profile file to load: the configured
// path, else the project file if present, else the user file.
func (p *Paths) ProfilesPath(configured string) string {
	if configured != "" {
		return configured
	}
	project := filepath.Join(p.ProjectRoot, ProjectConfigDir, ProfilesFile)
	if _, err := os.Stat(project); err == nil {
		return project
	}
	return filepath.Join(p.UserConfigDir, ProfilesFile)
}
