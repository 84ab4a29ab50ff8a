package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"go.uber.org/zap"
)

// ShieldsJSON 版本徽标响应
type ShieldsJSON struct {
	Message string `json:"message"`
}

// CheckVersionTask 定期获取最新发行版并更新容器内的版本检查信息
type CheckVersionTask struct {
	app *app.App
	url string
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		cfg := appContainer.Config()
		if !cfg.Update.CheckEnabled || cfg.Update.ShieldURL == "" {
			appContainer.Logger().Info("task log",
				zap.String("task", "check_version"),
				zap.String("event", "disabled"),
				zap.String("reason", "update check off"))
			return nil, nil
		}
		return &CheckVersionTask{
			app: appContainer,
			url: cfg.Update.ShieldURL,
		}, nil
	})
}

func (t *CheckVersionTask) Name() string {
	return "check_version"
}

func (t *CheckVersionTask) Run(ctx context.Context) error {
	latest, err := t.fetchVersion(ctx, t.url)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	info := app.CheckVersionInfo{
		VersionNewName: latest,
		VersionIsNew:   app.IsNewerVersion(latest, t.app.Version().Version),
	}

	// 更新 App 中的版本信息
	t.app.SetCheckVersionInfo(info)

	return nil
}

func (t *CheckVersionTask) fetchVersion(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version shield returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var sj ShieldsJSON
	if err := json.Unmarshal(body, &sj); err != nil {
		return "", err
	}

	return sj.Message, nil
}

func (t *CheckVersionTask) LoopInterval() time.Duration {
	return 30 * time.Minute
}

func (t *CheckVersionTask) IsStartupRun() bool {
	return true
}
