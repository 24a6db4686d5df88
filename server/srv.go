// Package server runs the index daemon: it follows the node and serves queries.
package server

import (
	"fmt"
	"os"

	"github.com/inscription-c/ordinals/btcd/rpcclient"
	"github.com/inscription-c/ordinals/config"
	"github.com/inscription-c/ordinals/constants"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/internal/sentry"
	"github.com/inscription-c/ordinals/internal/signal"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configFile string

var Cmd = &cobra.Command{
	Use:   "srv",
	Short: "sat index server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := loadConfig(cmd.Flags()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := IndexSrv(); err != nil {
			log.Srv.Criticalf("%v", err)
			signal.SimulateInterrupt()
			<-signal.InterruptHandlersDone
			os.Exit(1)
		}
		<-signal.InterruptHandlersDone
	},
}

func init() {
	cfg := config.SrvCfg
	Cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	Cmd.Flags().StringVarP(&cfg.Network, "network", "n", "", "bitcoin network: mainnet, testnet3, regtest or signet")
	Cmd.Flags().StringVarP(&cfg.Chain.Url, "rpc_connect", "s", "", "host:port of the bitcoin node rpc server")
	Cmd.Flags().StringVarP(&cfg.Chain.Username, "user", "u", "", "bitcoin rpc server username")
	Cmd.Flags().StringVarP(&cfg.Chain.Password, "password", "P", "", "bitcoin rpc server password")
	Cmd.Flags().BoolVarP(&cfg.Chain.DisableTLS, "notls", "", false, "connect to the node without tls")
	Cmd.Flags().StringVarP(&cfg.DB.Driver, "db_driver", "", "", "index store: leveldb or mysql")
	Cmd.Flags().StringVarP(&cfg.DB.DataDir, "data_dir", "", "", "leveldb data directory")
	Cmd.Flags().StringVarP(&cfg.DB.Mysql.Addr, "mysql_addr", "d", "", "index mysql database addr")
	Cmd.Flags().StringVarP(&cfg.DB.Mysql.User, "mysql_user", "", "", "index mysql database user")
	Cmd.Flags().StringVarP(&cfg.DB.Mysql.Password, "mysql_pass", "", "", "index mysql database password")
	Cmd.Flags().StringVarP(&cfg.DB.Mysql.DB, "db", "", "", "index mysql database name")
	Cmd.Flags().StringVarP(&cfg.Index.IndexSpentSats, "index_spent_sats", "", "", "keep sat ranges of spent outputs, true/false")
	Cmd.Flags().Uint32VarP(&cfg.Index.MaxReorgDepth, "max_reorg_depth", "", 0, "blocks kept undoable for reorgs")
	Cmd.Flags().StringVarP(&cfg.Index.PollInterval, "poll_interval", "", "", "node polling interval")
	Cmd.Flags().StringVarP(&cfg.Api.Listen, "rpc_listen", "l", "", "api listen address")
	Cmd.Flags().BoolVarP(&cfg.Api.NoApi, "no_api", "", false, "don't start api server")
	Cmd.Flags().BoolVarP(&cfg.Api.EnablePProf, "pprof", "", false, "enable pprof")
	Cmd.Flags().StringVarP(&cfg.Log.Level, "log_level", "", "", "log level")
}

// loadConfig reads the config file, lets explicitly set flags win over it,
// and fills defaults.
func loadConfig(flags *pflag.FlagSet) error {
	cfg := config.SrvCfg
	if configFile != "" {
		changed := map[string]string{}
		flags.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
		if err := cfg.Load(configFile); err != nil {
			return err
		}
		for name, value := range changed {
			if err := flags.Set(name, value); err != nil {
				return err
			}
		}
	}
	cfg.SetDefaults()
	return cfg.Validate()
}

// IndexSrv starts the daemon from config.SrvCfg. Shutdown handlers run in
// reverse order of registration: the runner finishes its block, the api
// stops, then the node client and the store close.
func IndexSrv() error {
	cfg := config.SrvCfg
	if err := log.InitLogRotator(cfg.Log.File); err != nil {
		return err
	}
	signal.AddInterruptHandler(log.Close)
	if err := log.SetLogLevels(cfg.Log.Level); err != nil {
		return err
	}
	if err := sentry.Init(cfg.Sentry.Dsn, cfg.Network, cfg.Sentry.TracesSampleRate); err != nil {
		return err
	}
	signal.AddInterruptHandler(sentry.Flush)

	params, err := cfg.NetParams()
	if err != nil {
		return err
	}
	schedule, err := ordinal.NewSchedule(params)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	signal.AddInterruptHandler(func() {
		if err := store.Close(); err != nil {
			log.Srv.Errorf("store.Close: %v", err)
		}
	})

	cli, err := rpcclient.NewClient(
		rpcclient.WithClientHost(cfg.Chain.Url),
		rpcclient.WithClientUser(cfg.Chain.Username),
		rpcclient.WithClientPassword(cfg.Chain.Password),
		rpcclient.WithClientNetwork(params.Name),
		rpcclient.WithClientDisableTLS(cfg.Chain.DisableTLS),
	)
	if err != nil {
		return err
	}
	signal.AddInterruptHandler(cli.Close)

	indexer, err := index.NewIndexer(
		index.WithStore(store),
		index.WithSchedule(schedule),
		index.WithClient(cli),
		index.WithIndexSpentSats(cfg.IndexSpentSats()),
		index.WithMaxReorgDepth(cfg.Index.MaxReorgDepth),
		index.WithFetchBatch(cfg.Index.FetchBatch),
	)
	if err != nil {
		return err
	}

	interval, err := cfg.PollIntervalDuration()
	if err != nil {
		return err
	}
	runner, err := NewRunner(WithIndex(indexer), WithPollInterval(interval))
	if err != nil {
		return err
	}

	if !cfg.Api.NoApi {
		h, err := handle.New(
			handle.WithIndex(indexer),
			handle.WithAddr(cfg.Api.Listen),
			handle.WithEnablePProf(cfg.Api.EnablePProf),
			handle.WithHalted(runner.Err),
		)
		if err != nil {
			return err
		}
		h.Run()
		signal.AddInterruptHandler(h.Shutdown)
	}

	runner.Start()
	signal.AddInterruptHandler(runner.Stop)
	log.Srv.Infof("Indexing %s from %s into %s", params.Name, cfg.Chain.Url, cfg.DB.Driver)
	return nil
}

func openStore(cfg *config.SrvConfigs) (dao.Store, error) {
	if cfg.DB.Driver == constants.DBDriverMysql {
		db, err := dao.NewDB(
			dao.WithAddr(cfg.DB.Mysql.Addr),
			dao.WithUser(cfg.DB.Mysql.User),
			dao.WithPassword(cfg.DB.Mysql.Password),
			dao.WithDBName(cfg.DB.Mysql.DB),
			dao.WithLogger(log.Gorm),
		)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	kv, err := dao.NewLevelDB(
		dao.WithDataDir(cfg.DB.DataDir),
		dao.WithNoSync(cfg.DB.NoSync),
		dao.WithLevelDBLogger(log.Idx),
	)
	if err != nil {
		return nil, err
	}
	return kv, nil
}
