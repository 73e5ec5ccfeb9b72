package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/elementdrive/element-drive-server/config"
	"github.com/elementdrive/element-drive-server/dao"
	"github.com/elementdrive/element-drive-server/events"
	"github.com/elementdrive/element-drive-server/services/kafka"
)

var logger = config.RootLogger

func main() {

	cliParser := cli.NewApp()
	cliParser.Name = "elementdrive"
	cliParser.Usage = "element-drive-server binary"
	cliParser.Version = "1.0"

	cliParser.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "conf",
			Usage:  "Path to yaml configuration file.",
			EnvVar: config.ED_CONF,
		},
	}

	cliParser.Commands = []cli.Command{
		{
			Name:  "env",
			Usage: "Print recognized environment variables and their current values",
			Action: func(ctx *cli.Context) error {
				printEnvironment()
				return nil
			},
		},
		{
			Name:   "status",
			Usage:  "Connect to the metadata database and report schema state",
			Action: runStatus,
		},
	}

	cliParser.Action = runStatus

	if err := cliParser.Run(os.Args); err != nil {
		logger.Error("exiting with error", zap.Error(err))
		os.Exit(1)
	}
}

func runStatus(c *cli.Context) error {

	confPath := c.GlobalString("conf")
	if len(confPath) == 0 {
		confPath = c.String("conf")
	}
	conf, err := config.NewAppConfiguration(confPath)
	if err != nil {
		return fmt.Errorf("error loading configuration at path %s: %v", confPath, err)
	}

	publisher, err := buildPublisher(conf.EventQueue)
	if err != nil {
		return err
	}

	d, identifier, err := dao.NewDataAccessLayer(conf.DatabaseConnection,
		dao.WithLogger(logger), dao.WithPublisher(publisher))
	if err != nil {
		return fmt.Errorf("could not establish database connection: %v", err)
	}

	state, err := d.GetDBState()
	if err != nil {
		return fmt.Errorf("getting db state failed: %v", err)
	}
	logger.Info("database reachable",
		zap.String("identifier", identifier),
		zap.String("schemaversion", state.SchemaVersion),
		zap.String("expected", dao.SchemaVersion),
	)
	if state.SchemaVersion != dao.SchemaVersion {
		return fmt.Errorf("schema version mismatch: have %s, want %s", state.SchemaVersion, dao.SchemaVersion)
	}
	return nil
}

func buildPublisher(conf config.EventQueueConfiguration) (events.Publisher, error) {
	if len(conf.KafkaAddrs) == 0 {
		return events.NullPublisher{}, nil
	}
	ap, err := kafka.NewAsyncProducer(conf.KafkaAddrs,
		kafka.WithLogger(logger),
		kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect to kafka: %v", err)
	}
	return ap, nil
}

func printEnvironment() {
	names := []string{
		config.ED_CONF,
		config.ED_DB_CONN_PARAMS,
		config.ED_DB_DRIVER,
		config.ED_DB_HOST,
		config.ED_DB_MAXIDLECONNS,
		config.ED_DB_MAXOPENCONNS,
		config.ED_DB_PASSWORD,
		config.ED_DB_PORT,
		config.ED_DB_PROTOCOL,
		config.ED_DB_SCHEMA,
		config.ED_DB_USERNAME,
		config.ED_DRAFT_REDIS_ADDR,
		config.ED_DRAFT_REDIS_DATABASE,
		config.ED_DRAFT_REDIS_PASSWORD,
		config.ED_DRAFT_TTL,
		config.ED_EVENT_KAFKA_ADDRS,
		config.ED_EVENT_TOPIC,
		config.ED_LOG_LEVEL,
	}
	sort.Strings(names)
	for _, name := range names {
		value := os.Getenv(name)
		if strings.Contains(name, "PASSWORD") && len(value) > 0 {
			value = "{password}"
		}
		fmt.Printf("%s=%s\n", name, value)
	}
}
