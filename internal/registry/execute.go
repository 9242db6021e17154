package registry

import (
	"context"
	"io"
)

// ExecuteInstall installs every package of plan in order. It stops at the
// first failure and returns a *StepError recording how many packages were
// installed before it; nothing is rolled back. progress may be nil.
func ExecuteInstall(ctx context.Context, w io.Writer, plan *InstallPlan, inst Installer, progress ProgressFunc) (int, error) {
	total := len(plan.ToInstall)
	for i, rec := range plan.ToInstall {
		err := ctx.Err()
		if err == nil {
			err = inst.InstallPackage(ctx, rec)
		}
		if progress != nil {
			progress(w, rec.Name, err)
		}
		if err != nil {
			return i, &StepError{Op: "install", Name: rec.Name, Completed: i, Total: total, Err: err}
		}
	}
	return total, nil
}

// ExecuteUninstall removes every package of plan in order, with the same
// failure semantics as ExecuteInstall.
func ExecuteUninstall(ctx context.Context, w io.Writer, plan *UninstallPlan, rm Remover, progress ProgressFunc) (int, error) {
	total := len(plan.Order)
	for i, name := range plan.Order {
		err := ctx.Err()
		if err == nil {
			err = rm.RemovePackage(name)
		}
		if progress != nil {
			progress(w, name, err)
		}
		if err != nil {
			return i, &StepError{Op: "uninstall", Name: name, Completed: i, Total: total, Err: err}
		}
	}
	return total, nil
}
