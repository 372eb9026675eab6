// Package bootstrap runs a filekit process: it validates typed config,
// starts registered components in order, runs lifecycle hooks, prints a
// startup summary, then either blocks until a shutdown signal (Run) or
// executes a finite task (RunTask) before stopping everything in reverse
// order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(filesystem.NewComponent(source))
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return upload(ctx)
//	})
package bootstrap
