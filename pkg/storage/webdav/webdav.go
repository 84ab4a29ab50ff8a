package webdav

import (
	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

type Config struct {
	IsEnabled  bool   `yaml:"is-enable"`
	Endpoint   string `yaml:"endpoint"`
	Path       string `yaml:"path"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 归档导出使用的 WebDAV 客户端
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

var clients = make(map[string]*WebDAV)

// NewClient 创建 WebDAV 客户端，同一端点同一账号复用连接
func NewClient(conf *Config) (*WebDAV, error) {
	key := conf.Endpoint + "|" + conf.User + "|" + conf.CustomPath

	if c, ok := clients[key]; ok {
		return c, nil
	}

	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		return nil, errors.Wrap(err, "webdav")
	}

	w := &WebDAV{Client: c, Config: conf}
	clients[key] = w
	return w, nil
}
