// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// INFINI Migrate is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/cihub/seelog"

	"infini.sh/migrate/config"
	"infini.sh/migrate/modules/migration"
)

func main() {
	var (
		configFile        string
		sourceEndpoint    string
		targetEndpoint    string
		indexName         string
		regexPattern      string
		mode              string
		renamePattern     string
		renameReplacement string
		workers           int
		logLevel          string
		showProgress      bool
		skipObjects       bool
		skipVersionCheck  bool
	)

	flag.StringVar(&configFile, "config", "", "path to the yaml config file")
	flag.StringVar(&sourceEndpoint, "source", "", "source cluster endpoint, eg: http://localhost:9200")
	flag.StringVar(&targetEndpoint, "target", "", "target cluster endpoint, eg: http://localhost:9201")
	flag.StringVar(&indexName, "index", "", "migrate only the specified index, exact name match")
	flag.StringVar(&regexPattern, "regex", "", "migrate indices matching the regex pattern")
	flag.StringVar(&mode, "mode", "", "transfer strategy: reindex or snapshot")
	flag.StringVar(&renamePattern, "rename-pattern", "", "regex applied to index names on the destination side")
	flag.StringVar(&renameReplacement, "rename-replacement", "", "replacement for the rename pattern, eg: new_$1")
	flag.IntVar(&workers, "workers", 0, "number of indices migrated in parallel")
	flag.StringVar(&logLevel, "log", "info", "the log level, options: trace, debug, info, warn, error")
	flag.BoolVar(&showProgress, "progress", false, "show transfer progress bars")
	flag.BoolVar(&skipObjects, "skip-cluster-objects", false, "skip migration of cluster-level configuration objects")
	flag.BoolVar(&skipVersionCheck, "skip-version-check", false, "skip the cluster version compatibility preflight")
	flag.Parse()

	setupLogger(logLevel)
	defer log.Flush()

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// flags passed on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source.Endpoint = sourceEndpoint
		case "target":
			cfg.Target.Endpoint = targetEndpoint
		case "index":
			cfg.Index = indexName
		case "regex":
			cfg.Regex = regexPattern
		case "mode":
			cfg.Mode = mode
		case "rename-pattern":
			cfg.Rename.Pattern = renamePattern
		case "rename-replacement":
			cfg.Rename.Replacement = renameReplacement
		case "workers":
			cfg.Workers = workers
		case "progress":
			cfg.ShowProgress = showProgress
		case "skip-cluster-objects":
			cfg.SkipClusterObjects = skipObjects
		case "skip-version-check":
			cfg.SkipVersionCheck = skipVersionCheck
		}
	})

	log.Info("starting cluster migration")

	runner, err := migration.NewRunner(cfg)
	if err != nil {
		log.Errorf("invalid run configuration: %v", err)
		log.Flush()
		os.Exit(1)
	}

	summary, err := runner.Run()
	if err != nil {
		log.Errorf("migration aborted: %v", err)
		log.Flush()
		os.Exit(1)
	}

	summary.Report()
	if !summary.Success() {
		log.Flush()
		os.Exit(1)
	}
	log.Info("migration completed successfully")
}

func setupLogger(level string) {
	cfg := `
<seelog type="sync" minlevel="` + level + `">
	<outputs formatid="main">
		<console />
	</outputs>
	<formats>
		<format id="main" format="[%Date(01-02) %Time] [%LEV] [%File:%Line] %Msg%n"/>
	</formats>
</seelog>`
	logger, err := log.LoggerFromConfigAsString(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	log.ReplaceLogger(logger)
}
