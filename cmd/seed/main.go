package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"sitecms/internal/config"
	"sitecms/internal/db"
	"sitecms/internal/logging"
	"sitecms/internal/repository"
	"sitecms/internal/service"
)

const defaultPages = "home,menu,locations,about,contact"

func main() {
	pagesFlag := flag.String("pages", defaultPages, "comma separated page names to seed from LIVE_SITE_URL")
	publish := flag.Bool("publish", false, "publish every newly seeded draft")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.Info("starting seed", "live_site", cfg.LiveSiteURL)

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		slog.Error("connect database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	repos := repository.New(gormDB)
	live := service.NewHTTPLiveSource(cfg.LiveSiteURL, cfg.LiveFetchTimeout)
	contentService := service.NewContentService(repos.Content, live, nil, 0)
	var versioningService service.VersioningService
	if *publish {
		versioningService = service.NewVersioningService(repos, nil)
	}

	res := seedPages(context.Background(), contentService, versioningService, parsePages(*pagesFlag))

	slog.Info("seed completed",
		"created", res.created,
		"existing", res.existing,
		"published", res.published,
		"failed", len(res.failed),
	)
	if len(res.failed) > 0 {
		slog.Error("some pages could not be seeded", "pages", strings.Join(res.failed, ","))
		os.Exit(1)
	}
}

type seedResult struct {
	created   int
	existing  int
	published int
	failed    []string
}

func parsePages(s string) []string {
	var pages []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}

// seedPages initializes drafts from the live site. Existing drafts are left alone.
// When versioning is non-nil, newly created drafts are published as well.
func seedPages(ctx context.Context, content service.ContentService, versioning service.VersioningService, pages []string) seedResult {
	var res seedResult
	for _, page := range pages {
		out, err := content.InitDraftFromLive(ctx, page)
		if err != nil {
			slog.Warn("seed page failed", "page", page, "error", err)
			res.failed = append(res.failed, page)
			continue
		}
		if out.AlreadyExists {
			slog.Info("draft already exists", "page", page)
			res.existing++
			continue
		}
		res.created++

		if versioning == nil {
			continue
		}
		if _, err := versioning.PublishDraft(ctx, page, "seed"); err != nil {
			slog.Warn("publish seeded page failed", "page", page, "error", err)
			res.failed = append(res.failed, fmt.Sprintf("%s (publish)", page))
			continue
		}
		res.published++
	}
	return res
}
