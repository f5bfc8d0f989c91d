// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Towel publishes a contact database as a REST service, and browses
// such a service from the command line.
//
//     towel --backend sqlite:contacts.db serve --fixtures contacts.yaml
//     towel overview
//     towel list contact city=London o=first_name
//     towel get contact 1 3
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-towel/backend"
	"github.com/diffeo/go-towel/contacts"
	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/restclient"
	"github.com/diffeo/go-towel/restdata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const defaultURL = "http://localhost:5980/"

var storage = backend.Backend{Implementation: backend.Memory}

var urlFlag = cli.StringFlag{
	Name:   "url",
	Value:  defaultURL,
	Usage:  "base URL of the REST service",
	EnvVar: "TOWEL_URL",
}

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the REST service",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "http",
			Value: ":5980",
			Usage: "[ip]:port for HTTP REST interface",
		},
		cli.StringFlag{
			Name:  "fixtures",
			Usage: "load contacts from this YAML file at startup",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
		cli.DurationFlag{
			Name:  "metrics-interval",
			Value: time.Minute,
			Usage: "how often to count items for metrics",
		},
	},
	Action: serve,
}

var overviewCommand = cli.Command{
	Name:   "overview",
	Usage:  "list the published resources",
	Flags:  []cli.Flag{urlFlag},
	Action: overview,
}

var listCommand = cli.Command{
	Name:      "list",
	Usage:     "list one page of a resource",
	ArgsUsage: "kind [field=value...]",
	Flags: []cli.Flag{
		urlFlag,
		cli.IntFlag{
			Name:  "page",
			Usage: "page number to fetch",
		},
	},
	Action: list,
}

var getCommand = cli.Command{
	Name:      "get",
	Usage:     "show items by identifier",
	ArgsUsage: "kind id [id...]",
	Flags:     []cli.Flag{urlFlag},
	Action:    get,
}

func main() {
	app := cli.NewApp()
	app.Name = "towel"
	app.Usage = "publish and browse contacts over REST"
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "backend",
			Value: &storage,
			Usage: "impl[:address] of the storage backend",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "global configuration YAML file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "minimum level of log messages",
		},
	}
	app.Before = func(c *cli.Context) error {
		level, err := logrus.ParseLevel(c.GlobalString("log-level"))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	}
	app.Commands = []cli.Command{
		serveCommand,
		overviewCommand,
		listCommand,
		getCommand,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("towel failed")
	}
}

func serve(c *cli.Context) error {
	logger := logrus.NewEntry(logrus.StandardLogger())
	config, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}

	repo, err := storage.Repository(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(repo); err != nil {
			logger.WithError(err).Warn("Could not close backend")
		}
	}()

	if fixtures := c.String("fixtures"); fixtures != "" {
		if err = contacts.LoadFixturesFile(fixtures, repo); err != nil {
			return err
		}
		logger.WithField("file", fixtures).Info("Loaded fixtures")
	}

	var reqLogger *logrus.Logger
	if c.Bool("log-requests") {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	server, err := NewServer(repo, config, logger, reqLogger)
	if err != nil {
		return err
	}
	defer server.Close()

	done := make(chan struct{})
	defer close(done)
	go observeEvery(clock.New(), c.Duration("metrics-interval"), server.Collections, logger, done)

	laddr := c.String("http")
	logger.WithFields(logrus.Fields{
		"http":    laddr,
		"backend": storage.String(),
		"api":     config.APIName,
	}).Info("Serving")
	return http.ListenAndServe(laddr, server.Handler)
}

func newClient(c *cli.Context) (*restclient.Client, error) {
	return restclient.New(c.String("url"))
}

func overview(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return writeOverview(c.App.Writer, client.Representation)
}

func writeOverview(w io.Writer, root restdata.RootData) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", root.DisplayLabel, root.SelfURI)
	for _, short := range root.Resources {
		canonical := ""
		if short.Canonical {
			canonical = "canonical"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", short.Kind, short.URL, canonical)
	}
	return tw.Flush()
}

// searchValues turns key=value arguments into listing query
// parameters.  Any filter submits the search.
func searchValues(kwargs map[string]string) url.Values {
	if len(kwargs) == 0 {
		return nil
	}
	values := url.Values{"s": {"1"}}
	for k, v := range kwargs {
		values.Set(k, v)
	}
	return values
}

func list(c *cli.Context) error {
	args, kwargs := forms.ParseArgs(c.Args())
	if len(args) != 1 {
		return errors.New("list needs exactly one kind")
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	result, err := client.List(args[0], c.Int("page"), searchValues(kwargs))
	if err != nil {
		return err
	}
	return restdata.Encode(c.App.Writer, result)
}

func get(c *cli.Context) error {
	args, _ := forms.ParseArgs(c.Args())
	if len(args) < 2 {
		return errors.New("get needs a kind and at least one identifier")
	}
	ids := make([]int64, len(args)-1)
	for i, arg := range args[1:] {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return errors.Errorf("invalid identifier %q", arg)
		}
		ids[i] = id
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	if len(ids) == 1 {
		env, err := client.Get(args[0], ids[0])
		if err != nil {
			return err
		}
		return restdata.Encode(c.App.Writer, env)
	}
	envs, err := client.GetSet(args[0], ids)
	if err != nil {
		return err
	}
	return restdata.Encode(c.App.Writer, envs)
}
