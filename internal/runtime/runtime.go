package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"lisp/internal/builtins"
	"lisp/internal/evaluator"
	"lisp/internal/image"
	"lisp/internal/log"
	"lisp/internal/object"
	"lisp/internal/reader"
	"lisp/internal/util"
)

var ErrNoImage = errors.New("no image store configured")

// Runtime owns one global environment and everything wired around it.
type Runtime struct {
	Config util.Configuration
	Env    *object.Env

	log   *log.Log
	eval  *evaluator.Evaluator
	image *image.Store
}

func New(ctx context.Context, config util.Configuration) (*Runtime, error) {
	l := log.New(config.LogLevel, config.LogFile)
	slog.SetDefault(l.Logger)

	env := object.NewEnv()
	builtins.Register(env)

	r := &Runtime{
		Config: config,
		Env:    env,
		log:    l,
		eval: evaluator.New(env, env.Arena(),
			evaluator.WithLogger(l.Logger),
			evaluator.WithMaxDepth(config.MaxDepth)),
	}

	if config.Image.Driver != "" {
		store, err := image.Open(ctx, config.Image.Driver, config.Image.DSN)
		if err != nil {
			l.Close()
			return nil, err
		}
		r.image = store
	}

	l.Info("runtime started",
		slog.String("version", config.Version),
		slog.Uint64("env", env.ID),
		slog.Int("maxDepth", config.MaxDepth),
		slog.String("image", config.Image.Driver))
	return r, nil
}

// EvalString reads and evaluates every form of src in order and returns
// the value of the last one, or nil for empty input.
func (r *Runtime) EvalString(src string) (object.Value, error) {
	forms, err := reader.ReadAll(src, r.Env.Arena())
	if err != nil {
		var se *reader.SyntaxError
		if errors.As(err, &se) {
			return object.VOID, fmt.Errorf("%w\n%s", err, util.ContextLines(src, se.Pos, se.Err.Error()))
		}
		return object.VOID, err
	}

	result := object.NIL
	for _, form := range forms {
		result, err = r.eval.Eval(form)
		if err != nil {
			slog.Debug("evaluation failed",
				slog.String("form", form.Inspect()),
				slog.Any("error", err))
			return object.VOID, err
		}
	}
	return result, nil
}

func (r *Runtime) LoadFile(path string) (object.Value, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return object.VOID, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("loading file", slog.String("path", path))
	v, err := r.EvalString(string(source))
	if err != nil {
		return object.VOID, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// SaveImage stores the global bindings under the configured image name.
func (r *Runtime) SaveImage(ctx context.Context) (saved, skipped int, err error) {
	if r.image == nil {
		return 0, 0, ErrNoImage
	}
	return r.image.Save(ctx, r.Config.Image.Name, r.Env)
}

// RestoreImage loads the configured image over the current bindings.
func (r *Runtime) RestoreImage(ctx context.Context) (int, error) {
	if r.image == nil {
		return 0, ErrNoImage
	}
	scratch := object.NewArena()
	defer scratch.Release()
	return r.image.Restore(ctx, r.Config.Image.Name, r.Env, scratch)
}

// Close releases the environment arena. Values obtained from the runtime
// must not be used afterwards.
func (r *Runtime) Close() error {
	var errs []error
	if r.image != nil {
		errs = append(errs, r.image.Close())
	}
	n := r.Env.Arena().Release()
	slog.Debug("runtime closed", slog.Int("released", n))
	errs = append(errs, r.log.Close())
	return errors.Join(errs...)
}
