package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// RawEntry is what the walker yields before metadata probing: just enough
// to route the path through the pipeline.
type RawEntry struct {
	Path          string
	IsDir         bool
	IsSymlink     bool
	OutsideRoot   bool // symlink target resolves outside the scan root
	ParentModTime time.Time
}

// VisitFunc receives every emitted entry in traversal order.
type VisitFunc func(RawEntry) error

// SkipFunc records a path that was touched but dropped with a reason.
type SkipFunc func(models.SkipRecord)

// Walker performs a bounded, cycle-safe, depth-first traversal of a scan
// root. Sibling order is lexicographic by name so two walks over an
// unmodified tree emit identical sequences. Traversal uses an explicit
// stack; cycles are detected through the identity of every directory on
// the active path.
type Walker struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewWalker creates a walker for one configuration snapshot.
func NewWalker(cfg *config.Config, logger *zap.Logger) *Walker {
	return &Walker{cfg: cfg, logger: logger}
}

// stack tasks: a task either enters a path or pops a directory identity
// off the active path.
type walkTask struct {
	path          string
	isDir         bool
	isSymlink     bool
	outsideRoot   bool
	parentModTime time.Time
	linkBudget    int

	leave   bool
	leaveID fileID
}

// Walk traverses root and hands every entry to visit. A fresh call is a fresh
// traversal. Per-entry failures turn into skip records and never abort the
// walk; only an inaccessible root or context cancellation return an error.
func (w *Walker) Walk(ctx context.Context, root string, visit VisitFunc, skip SkipFunc) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	rootInfo, err := os.Stat(absRoot)
	if err != nil {
		return err
	}
	if !rootInfo.IsDir() {
		return &os.PathError{Op: "walk", Path: absRoot, Err: os.ErrInvalid}
	}

	// Resolved root prefix for outside-root detection on followed links.
	resolvedRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		resolvedRoot = absRoot
	}

	onPath := make(map[fileID]string)
	stack := []walkTask{{
		path:       absRoot,
		isDir:      true,
		linkBudget: w.cfg.MaxSymlinkFollowDepth,
	}}

	for len(stack) > 0 {
		// Cancellation is checked between entries, never mid-probe.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if task.leave {
			delete(onPath, task.leaveID)
			continue
		}

		if !task.isDir {
			err := visit(RawEntry{
				Path:          task.path,
				IsSymlink:     task.isSymlink,
				OutsideRoot:   task.outsideRoot,
				ParentModTime: task.parentModTime,
			})
			if err != nil {
				return err
			}
			continue
		}

		stack, err = w.enterDir(task, absRoot, resolvedRoot, onPath, stack, visit, skip)
		if err != nil {
			return err
		}
	}

	return nil
}

// enterDir lists one directory, emits it, and pushes its children. Returns
// the updated stack.
func (w *Walker) enterDir(task walkTask, absRoot, resolvedRoot string, onPath map[fileID]string, stack []walkTask, visit VisitFunc, skip SkipFunc) ([]walkTask, error) {
	info, err := os.Stat(task.path)
	if err != nil {
		skip(models.SkipRecord{Path: task.path, Reason: skipReasonFor(err), Detail: err.Error()})
		return stack, nil
	}

	id := fileIdentity(info, task.path)
	if prev, seen := onPath[id]; seen {
		// A symlink led back to an ancestor on the current path.
		skip(models.SkipRecord{Path: task.path, Reason: models.SkipCycle, Detail: "revisits " + prev})
		return stack, nil
	}

	if task.path != absRoot {
		err := visit(RawEntry{
			Path:          task.path,
			IsDir:         true,
			IsSymlink:     task.isSymlink,
			OutsideRoot:   task.outsideRoot,
			ParentModTime: task.parentModTime,
		})
		if err != nil {
			return stack, err
		}
	}

	entries, err := os.ReadDir(task.path)
	if err != nil {
		skip(models.SkipRecord{Path: task.path, Reason: skipReasonFor(err), Detail: err.Error()})
		return stack, nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	onPath[id] = task.path
	stack = append(stack, walkTask{leave: true, leaveID: id})

	// Push in reverse so the lexicographically first child pops first.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		child := filepath.Join(task.path, entry.Name())

		rel, relErr := filepath.Rel(absRoot, child)
		if relErr != nil {
			rel = entry.Name()
		}
		if w.excluded(entry.Name(), rel) {
			w.logger.Debug("Skipping excluded entry", zap.String("path", child))
			skip(models.SkipRecord{Path: child, Reason: models.SkipExcluded})
			continue
		}
		if !w.cfg.IncludeHidden && isHidden(entry.Name()) {
			skip(models.SkipRecord{Path: child, Reason: models.SkipHidden})
			continue
		}

		isLink := entry.Type()&os.ModeSymlink != 0
		switch {
		case entry.IsDir():
			stack = append(stack, walkTask{
				path:          child,
				isDir:         true,
				parentModTime: info.ModTime(),
				linkBudget:    task.linkBudget,
			})
		case isLink:
			stack = append(stack, w.symlinkTask(child, task.linkBudget, info.ModTime(), resolvedRoot))
		default:
			stack = append(stack, walkTask{
				path:          child,
				parentModTime: info.ModTime(),
				linkBudget:    task.linkBudget,
			})
		}
	}

	return stack, nil
}

// symlinkTask decides whether a symlink is emitted as a plain entry or
// followed into a directory. A link is only followed while the budget
// lasts; the cycle guard in enterDir stops ancestor revisits.
func (w *Walker) symlinkTask(path string, budget int, parentMod time.Time, resolvedRoot string) walkTask {
	task := walkTask{
		path:          path,
		isSymlink:     true,
		parentModTime: parentMod,
		linkBudget:    budget,
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Dangling link: emit as-is, the probe reports the link itself.
		return task
	}

	if !strings.HasPrefix(resolved, resolvedRoot+string(os.PathSeparator)) && resolved != resolvedRoot {
		task.outsideRoot = true
	}

	if budget <= 0 {
		return task
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		task.isDir = true
		task.linkBudget = budget - 1
	}
	return task
}

// excluded matches the configured exclude globs against the entry name
// and every segment of the path relative to the scan root, pruning whole
// subtrees when a directory matches. Matching stays inside the root: an
// ancestor directory the root happens to live under never triggers an
// exclusion.
func (w *Walker) excluded(name, rel string) bool {
	for _, pattern := range w.cfg.ExcludeGlobs {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		for _, segment := range strings.Split(rel, string(os.PathSeparator)) {
			if segment == pattern {
				return true
			}
		}
	}
	return false
}

// skipReasonFor maps an I/O error to the skip taxonomy.
func skipReasonFor(err error) models.SkipReason {
	switch {
	case os.IsNotExist(err):
		return models.SkipNotFound
	case os.IsPermission(err):
		return models.SkipPermissionDenied
	default:
		return models.SkipTransient
	}
}

// isHidden reports dotfiles as hidden.
func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
