// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/orchestrator"
	"github.com/bitmark-inc/batchmintd/schedule"
	"github.com/bitmark-inc/batchmintd/service"
	"github.com/bitmark-inc/batchmintd/signer"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/batchmintd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "batchmint"

	defaultTimezone   = "UTC"
	defaultDailyLimit = service.DefaultDailyLimit

	defaultBatchTarget        = service.DefaultCycleQuantity
	defaultProductionPacingMs = 1000
	defaultSettleSeconds      = 10
	defaultConversionPacingMs = 3000

	defaultCooldownHours          = 24
	defaultSafetyBufferMinutes    = 2
	defaultScheduleTargetQuantity = service.DefaultCycleQuantity

	defaultSignerTimeoutSeconds = 120
	defaultSignerRatePerSecond  = 1.0
	defaultSignerBurst          = 1

	defaultMetricsListen = "" // disabled

	defaultLogDirectory = "log"
	defaultLogFile      = "batchmintd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - which backend and where
type DatabaseType struct {
	Backend   string `gluamapper:"backend" json:"backend"`
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// QuotaType - daily production cap
type QuotaType struct {
	DailyLimit int    `gluamapper:"daily_limit" json:"daily_limit"`
	Timezone   string `gluamapper:"timezone" json:"timezone"`
}

// ProductionType - batch size and pacing of productions
type ProductionType struct {
	BatchTarget   int `gluamapper:"batch_target" json:"batch_target"`
	PacingMs      int `gluamapper:"pacing_ms" json:"pacing_ms"`
	SettleSeconds int `gluamapper:"settle_seconds" json:"settle_seconds"`
}

// ConversionType - pacing of group conversions
type ConversionType struct {
	PacingMs int `gluamapper:"pacing_ms" json:"pacing_ms"`
}

// ScheduleType - recurring cycle timing
type ScheduleType struct {
	CooldownHours       int `gluamapper:"cooldown_hours" json:"cooldown_hours"`
	SafetyBufferMinutes int `gluamapper:"safety_buffer_minutes" json:"safety_buffer_minutes"`
	TargetQuantity      int `gluamapper:"target_quantity" json:"target_quantity"`
}

// SignerType - connection to the signing agent
type SignerType struct {
	Connect          string  `gluamapper:"connect" json:"connect"`
	UseTLS           bool    `gluamapper:"use_tls" json:"use_tls"`
	Insecure         bool    `gluamapper:"insecure" json:"insecure"`
	Service          string  `gluamapper:"service" json:"service"`
	ProductionMethod string  `gluamapper:"production_method" json:"production_method"`
	ConversionMethod string  `gluamapper:"conversion_method" json:"conversion_method"`
	BalanceMethod    string  `gluamapper:"balance_method" json:"balance_method"`
	TimeoutSeconds   int     `gluamapper:"timeout_seconds" json:"timeout_seconds"`
	RatePerSecond    float64 `gluamapper:"rate_per_second" json:"rate_per_second"`
	Burst            int     `gluamapper:"burst" json:"burst"`
}

// MetricsType - optional prometheus listener
type MetricsType struct {
	Listen string `gluamapper:"listen" json:"listen"`
}

// Configuration - the whole file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Owner         string               `gluamapper:"owner" json:"owner"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Quota         QuotaType            `gluamapper:"quota" json:"quota"`
	Production    ProductionType       `gluamapper:"production" json:"production"`
	Conversion    ConversionType       `gluamapper:"conversion" json:"conversion"`
	Schedule      ScheduleType         `gluamapper:"schedule" json:"schedule"`
	Signer        SignerType           `gluamapper:"signer" json:"signer"`
	Metrics       MetricsType          `gluamapper:"metrics" json:"metrics"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`

	location *time.Location
}

// GetConfiguration - will read decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Backend:   storage.LevelDB,
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Quota: QuotaType{
			DailyLimit: defaultDailyLimit,
			Timezone:   defaultTimezone,
		},

		Production: ProductionType{
			BatchTarget:   defaultBatchTarget,
			PacingMs:      defaultProductionPacingMs,
			SettleSeconds: defaultSettleSeconds,
		},

		Conversion: ConversionType{
			PacingMs: defaultConversionPacingMs,
		},

		Schedule: ScheduleType{
			CooldownHours:       defaultCooldownHours,
			SafetyBufferMinutes: defaultSafetyBufferMinutes,
			TargetQuantity:      defaultScheduleTargetQuantity,
		},

		Signer: SignerType{
			Service:        signer.DefaultService,
			TimeoutSeconds: defaultSignerTimeoutSeconds,
			RatePerSecond:  defaultSignerRatePerSecond,
			Burst:          defaultSignerBurst,
		},

		Metrics: MetricsType{
			Listen: defaultMetricsListen,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	options.Owner = strings.TrimSpace(options.Owner)
	if "" == options.Owner {
		return nil, fault.ErrMissingOwner
	}

	options.Database.Backend = strings.ToLower(options.Database.Backend)
	switch options.Database.Backend {
	case storage.LevelDB, storage.SQLite, storage.File:
	default:
		return nil, fmt.Errorf("database backend: %q  error: %w", options.Database.Backend, fault.ErrInvalidBackend)
	}

	options.location, err = time.LoadLocation(options.Quota.Timezone)
	if nil != err {
		return nil, fmt.Errorf("quota timezone: %q  error: %w", options.Quota.Timezone, err)
	}

	if options.Quota.DailyLimit <= 0 || options.Production.BatchTarget <= 0 || options.Schedule.TargetQuantity <= 0 {
		return nil, fault.ErrInvalidCount
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// make all absolute directories
	for _, d := range []string{options.Database.Directory, options.Logging.Directory} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	return options, nil
}

// DatabasePath - where the selected backend keeps its data
func (c *Configuration) DatabasePath() string {
	name := c.Database.Name
	switch c.Database.Backend {
	case storage.LevelDB:
		name += ".leveldb"
	case storage.SQLite:
		name += ".sqlite3"
	}
	return filepath.Join(c.Database.Directory, name)
}

// Location - time zone for the daily quota
func (c *Configuration) Location() *time.Location {
	if nil == c.location {
		return time.UTC
	}
	return c.location
}

// ServiceConfiguration - the core settings
func (c *Configuration) ServiceConfiguration() service.Configuration {
	return service.Configuration{
		Owner:         c.Owner,
		DailyLimit:    c.Quota.DailyLimit,
		Location:      c.Location(),
		CycleQuantity: c.Production.BatchTarget,
		Orchestrator: orchestrator.Configuration{
			ProductionPacing: time.Duration(c.Production.PacingMs) * time.Millisecond,
			ConversionPacing: time.Duration(c.Conversion.PacingMs) * time.Millisecond,
			SettleDelay:      time.Duration(c.Production.SettleSeconds) * time.Second,
		},
		Schedule: schedule.Configuration{
			Cooldown:     time.Duration(c.Schedule.CooldownHours) * time.Hour,
			SafetyBuffer: time.Duration(c.Schedule.SafetyBufferMinutes) * time.Minute,
			Quantity:     c.Schedule.TargetQuantity,
		},
	}
}

// SignerConfiguration - settings for signer.Dial
func (c *Configuration) SignerConfiguration() signer.Configuration {
	return signer.Configuration{
		Connect:    c.Signer.Connect,
		UseTLS:     c.Signer.UseTLS,
		Insecure:   c.Signer.Insecure,
		Service:    c.Signer.Service,
		Production: c.Signer.ProductionMethod,
		Conversion: c.Signer.ConversionMethod,
		Balance:    c.Signer.BalanceMethod,
		Timeout:    time.Duration(c.Signer.TimeoutSeconds) * time.Second,
		Rate:       c.Signer.RatePerSecond,
		Burst:      c.Signer.Burst,
	}
}
