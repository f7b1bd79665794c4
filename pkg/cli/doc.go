/*
Package cli provides command-line interface utilities for Conduit.

The cli package includes output formatters and typed command errors used by
the conduit command.

Output Formatting:

The cli package supports text and JSON output for displaying command
results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, modelList); err != nil {
		return err
	}

Errors:

Commands wrap failures in typed errors so callers can distinguish
configuration problems from execution failures:

	return cli.NewConfigError(path, "unknown provider")
	return cli.NewCommandError("chat", err)
*/
package cli
