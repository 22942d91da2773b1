// Atlas MCP server exposes a personal email, calendar and memory assistant
// through the Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"

	"github.com/atlasbot/atlas-mcp/internal/auth"
	"github.com/atlasbot/atlas-mcp/internal/config"
	"github.com/atlasbot/atlas-mcp/internal/format"
	"github.com/atlasbot/atlas-mcp/internal/gservice"
	"github.com/atlasbot/atlas-mcp/internal/logger"
	"github.com/atlasbot/atlas-mcp/internal/search"
	"github.com/atlasbot/atlas-mcp/internal/store"
	"github.com/atlasbot/atlas-mcp/internal/tool"
)

func main() {
	httpAddr := flag.String("http-addr", "localhost:0", "HTTP server listen addr")
	oauthTokenFile := flag.String("oauth-token-file", "./data/atlas-mcp-token.json", "Path to cache google oauth token, empty to avoid storing")
	oauthURLParam := flag.String("oauth-url", "", "OAuth URL")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file (only used with stdio transport, otherwise logs to stdout)")

	flag.Parse()

	log, closeLogs := setupLogger(*enableStdio, *logFile)
	defer closeLogs()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config.New failed")
	}

	ln := mustListen(log, *httpAddr)
	oauthCfg := mustCreateOauthCfg(log, ln.Addr().String(), *envFileParam, *oauthURLParam)

	if *oauthTokenFile == "" {
		log.Fatal().Msg("-oauth-token-file must be provided")
	}
	tok, err := auth.NewToken(oauthCfg, *oauthTokenFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("auth.NewToken failed")
	}

	defer func() {
		log.Info().Msg("persisting token if exists")
		if err := tok.Persist(); err != nil {
			log.Error().Err(err).Msg("tok.Persist failed")
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok, log))

	prefs := store.NewFileStore(cfg.PreferencesPath, store.DefaultPreferences)
	memory := store.NewMemory(store.NewFileStore(cfg.MemoryPath, store.DefaultMemory))

	server := tool.NewServer(tool.Deps{
		Gmail:     gservice.NewGmail(oauthCfg, tok),
		Calendar:  gservice.NewCalendar(oauthCfg, tok),
		Converter: &format.Converter{},
		Prefs:     prefs,
		Memory:    memory,
		Searcher:  search.NewClient(cfg.SearchAPIKey, cfg.SearchEngineID),
		Now:       time.Now,
	})
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return server }, nil))

	srv := &http.Server{
		Handler: mux,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(log, oauthCfg.RedirectURL)
	}

	stopHTTP, errHTTPCh := serveHTTP(log, srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(log, server)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Error().Err(err).Msg("http server error")
	case err := <-errStdioCh:
		log.Error().Err(err).Msg("stdio error")
	case <-shutdown:
		log.Info().Msg("shutdown signal received")
	}
}

func serveStdio(log zerolog.Logger, srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Info().Msg("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Info().Msg("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(log zerolog.Logger, srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Info().Str("addr", ln.Addr().String()).Msg("starting http server")

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			log.Error().Err(err).Msg("http server stopped")
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("srv.Shutdown failed")
		}

		<-errHTTPCh
		log.Info().Msg("http server stopped")
	}, errHTTPCh
}

func mustListen(log zerolog.Logger, httpAddr string) net.Listener {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("net.Listen failed")
	}

	return ln
}

func mustCreateOauthCfg(log zerolog.Logger, lnAddr, envFileParam, oauthURLParam string) *oauth2.Config {
	if envFileParam != "" {
		if err := godotenv.Load(envFileParam); err != nil {
			log.Fatal().Err(err).Msg("godotenv.Load failed")
		}
	}

	oauthClientID := os.Getenv("OAUTH_GOOGLE_CLIENT_ID")
	oauthClientSec := os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET")

	if oauthClientID == "" || oauthClientSec == "" {
		log.Fatal().Msg("env variables OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET must be set")
	}

	oauthURL := fmt.Sprintf("http://%s/oauth", lnAddr)
	if oauthURLParam != "" {
		oauthURL = oauthURLParam
	}

	return &oauth2.Config{
		ClientID:     oauthClientID,
		ClientSecret: oauthClientSec,
		RedirectURL:  oauthURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			gmail.GmailSendScope,
			calendar.CalendarScope,
		},
		Endpoint: google.Endpoint,
	}
}

func setupLogger(enableStdio bool, logFile string) (zerolog.Logger, func()) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		log := logger.New("atlas-mcp", f)

		return log, func() {
			if err := f.Close(); err != nil {
				log.Error().Err(err).Msg("f.Close failed")
			}
		}
	}

	if enableStdio {
		return logger.New("atlas-mcp", io.Discard), func() {}
	}
	return logger.NewConsole("atlas-mcp", os.Stdout), func() {}
}

func openBrowser(log zerolog.Logger, url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("could not open browser automatically; copy the link into a browser")
	}
}
