// Package commands implements the fbx subcommands.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments and load configuration
//   - Run(): Execute the command against the box
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - discover: Locate the box and print its description
//   - register: Request an app token, confirmed on the box front panel
//   - status: Log in and print the session and box state
//   - downloads: List or add downloads
//   - logout: Close the session opened with the stored token
//   - forget: Remove the stored app token
//   - serve: Run the local REST gateway
//
// # Example Usage
//
//	cmd := commands.CreateStatusCommand()
//	ctx := &commands.AppContext{
//	    ConfigPath: "~/.config/fbx/config.toml",
//	    Context:    context.Background(),
//	    Out:        os.Stdout,
//	}
//	if err := cmd.Init(args, ctx); err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package commands
