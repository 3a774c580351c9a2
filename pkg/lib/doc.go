// Package lib provides a Go SDK to run scriptd scripts from Go programs.
//
// It exposes the same pipeline the scriptd HTTP service uses: scripts are
// looked up under a trusted directory, made executable, and run by an
// interpreter with a closed execution environment and a deadline.
//
// # Quick Start
//
//	client, err := lib.New(lib.Config{
//	    ScriptDir: "/scripts",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := client.Run(ctx, "backup.sh")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Output())
//
// # Serving over HTTP
//
// [Client.Handler] returns the same [net/http.Handler] the scriptd binary
// serves, so it can be mounted on an existing server:
//
//	h, _ := client.Handler(lib.ResponseModeExecute)
//	mux.Handle("/", h)
//
// # Environment
//
// Scripts never inherit the environment of the calling process. The
// environment is built from defaults (HOME, USER, TERM, PATH, LANG, LC_ALL,
// CREDENTIALS_DIR), an optional YAML file and [Config].Env, in that order.
// [Client.Reload] rebuilds it from the file.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: The script does not exist.
//   - [ErrNotValid]: The script name is not valid (e.g. escapes the script directory).
//   - [ErrTimeout]: The script was killed after exceeding the deadline.
//
// A script exiting with a non zero code is not an error, check [RunResult].ExitCode.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
