// restart kills any running search backend matched by path and relaunches it
// detached, the way the old operations script did: the kill is best effort,
// nothing verifies the relaunch, and output goes to a log file next to the
// app. The only failure that aborts is not being able to enter the app
// directory.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

func main() {
	appDir := envOr("APP_DIR", "/home/mark/Hiner.nyc/yocto")
	appPath := envOr("APP_PATH", filepath.Join(appDir, "app.py"))
	logFile := envOr("LOG_FILE", filepath.Join(appDir, "app.log"))

	if err := os.Chdir(appDir); err != nil {
		fmt.Fprintf(os.Stderr, "restart: cannot enter %s: %v\n", appDir, err)
		os.Exit(1)
	}

	// Best effort: no check that the old process actually died.
	_ = exec.Command("pkill", "-f", appPath).Run()

	relaunch(appDir, appPath, logFile)
	os.Exit(0)
}

func relaunch(appDir, appPath, logFile string) {
	out, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "restart: cannot open log %s: %v\n", logFile, err)
		return
	}
	defer out.Close()

	cmd := exec.Command("bash", "-c", relaunchCommand(appDir, appPath))
	cmd.Dir = appDir
	cmd.Stdout = out
	cmd.Stderr = out
	// New session, so the app survives this process and its terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "restart: relaunch failed to start: %v\n", err)
		return
	}
	_ = cmd.Process.Release()
}

func relaunchCommand(appDir, appPath string) string {
	return fmt.Sprintf("source %s && exec python3 %s",
		shellQuote(filepath.Join(appDir, "venv", "bin", "activate")),
		shellQuote(appPath))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
