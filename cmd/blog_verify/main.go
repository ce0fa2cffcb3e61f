package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogservice/internal/blog"
	"github.com/2beens/blogservice/internal/config"
	"github.com/2beens/blogservice/internal/db"
	"github.com/2beens/blogservice/internal/logging"
)

var errNothingToDo = errors.New("nothing to do, use -list and/or -ids")

// blog_verify is the moderation tool: it lists blogs waiting for verification and verifies them.
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	idsRaw := flag.String("ids", "", "comma separated ids of blogs to verify")
	list := flag.Bool("list", false, "list blogs waiting for verification")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("load .env file: %s\n", err)
	}

	// log.Fatal exits without running deferred calls, so all the work is done in run
	if err := run(*env, *configPath, *idsRaw, *list); err != nil {
		if errors.Is(err, errNothingToDo) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(env, configPath, idsRaw string, list bool) error {
	if !list && idsRaw == "" {
		return errNothingToDo
	}

	ids, err := parseIDs(idsRaw)
	if err != nil {
		return fmt.Errorf("parse ids: %w", err)
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("BLOG_DB_PASSWORD"),
		DBName:     cfg.PostgresDBName,
	})
	if err != nil {
		return fmt.Errorf("new db pool: %w", err)
	}
	defer dbPool.Close()

	repo := blog.NewRepo(dbPool)

	if list {
		unverified, err := repo.ListUnverified(ctx)
		if err != nil {
			return fmt.Errorf("list unverified: %w", err)
		}
		for _, b := range unverified {
			fmt.Printf("%d\tuser:%d\t%s\t%s\n", b.ID, b.UserID, b.CreatedAt.Format(time.RFC3339), b.Title)
		}
		log.Infof("%d blogs waiting for verification", len(unverified))
	}

	if len(ids) > 0 {
		verified, err := repo.SetVerified(ctx, ids...)
		if err != nil {
			return fmt.Errorf("verify blogs %v: %w", ids, err)
		}
		log.Infof("verified %d of %d blogs", verified, len(ids))
	}

	return nil
}

func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid blog id: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
