package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/resources"
)

func CreateDownloadsCommand() *DownloadsCommand {
	c := &DownloadsCommand{
		fs: pflag.NewFlagSet("downloads", pflag.ContinueOnError),
	}
	c.fs.StringSliceVar(&c.add, "add", nil, "queue a URL (repeatable)")
	c.fs.StringVar(&c.dir, "dir", "", "download directory on the box disk")
	c.fs.StringVar(&c.status, "status", "", "only list tasks in this state")
	c.fs.BoolVar(&c.jsonOutput, "json", false, "print the tasks as JSON")
	return c
}

type DownloadsCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config

	add        []string
	dir        string
	status     string
	jsonOutput bool
}

func (c *DownloadsCommand) Name() string {
	return c.fs.Name()
}

func (c *DownloadsCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.jsonOutput {
		log.SetForceStdErr(true)
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *DownloadsCommand) Run() error {
	ctx := c.ctx.ctx()
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	out := c.ctx.out()

	if len(c.add) > 0 {
		req := resources.DefaultDownloadURL()
		if len(c.add) == 1 {
			req.DownloadURL = c.add[0]
		} else {
			req.DownloadURLList = strings.Join(c.add, "\n")
		}
		if c.dir != "" {
			req.DownloadDir = resources.EncodePath(c.dir)
		}
		added, err := client.Download.AddFromURL(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Queued download %d\n", added.ID)
		return nil
	}

	tasks, err := client.Download.Tasks(ctx)
	if err != nil {
		return err
	}
	if c.status != "" {
		filtered := tasks[:0]
		for _, task := range tasks {
			if string(task.Status) == c.status {
				filtered = append(filtered, task)
			}
		}
		tasks = filtered
	}

	if c.jsonOutput {
		if tasks == nil {
			tasks = []resources.DownloadTask{}
		}
		return printJSON(out, tasks)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDONE\tNAME")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%d.%02d%%\t%s\n", task.ID, task.Status, task.RxPct/100, task.RxPct%100, task.Name)
	}
	return tw.Flush()
}
