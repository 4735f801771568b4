package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/masmgr/hglineage/internal/hg"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ResolveAll when no concurrency is configured.
const DefaultConcurrency = 4

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDiagnostics sets the collector receiving parse warnings and duplicate
// transition errors.
func WithDiagnostics(diags *hg.Diagnostics) Option {
	return func(r *Resolver) {
		r.diags = diags
	}
}

// WithFilters restricts which sub-repositories are followed.
func WithFilters(include, exclude []string) Option {
	return func(r *Resolver) {
		r.filter = nameFilter{include: include, exclude: exclude}
	}
}

// WithConcurrency bounds how many roots ResolveAll resolves at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// Resolver builds commit graphs from a text source and binds the ranges of
// the sub-repositories they reference. Resolved sub-repositories are shared
// by every resolution made through the same Resolver.
type Resolver struct {
	source      hg.TextSource
	logger      *zap.Logger
	diags       *hg.Diagnostics
	filter      nameFilter
	concurrency int
	cache       *repoCache
}

// New creates a Resolver reading from source.
func New(source hg.TextSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:      source,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
		cache:       newRepoCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.diags == nil {
		r.diags = hg.NewDiagnostics(r.logger)
	}
	return r
}

// Diagnostics returns the collector used by the resolver.
func (r *Resolver) Diagnostics() *hg.Diagnostics {
	return r.diags
}

// SubRepository returns a resolved sub-repository by name, or nil.
// The lookup is case-insensitive.
func (r *Resolver) SubRepository(name string) *hg.Repository {
	repo, _ := r.cache.get(strings.ToLower(name))
	return repo
}

// SubRepositories returns the lowercase names of all resolved sub-repositories, sorted.
func (r *Resolver) SubRepositories() []string {
	return r.cache.names()
}

// Resolve reads the repository at path and every sub-repository it references.
func (r *Resolver) Resolve(ctx context.Context, path string) (*hg.Repository, error) {
	return r.resolve(ctx, path, "")
}

// ResolveAll resolves several roots concurrently. The results keep the order of paths.
func (r *Resolver) ResolveAll(ctx context.Context, paths ...string) ([]*hg.Repository, error) {
	repos := make([]*hg.Repository, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			repo, err := r.Resolve(gctx, path)
			if err != nil {
				return err
			}
			repos[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return repos, nil
}

// resolve builds one repository. key is its cache key when it is a
// sub-repository and "" for a root.
func (r *Resolver) resolve(ctx context.Context, path, key string) (*hg.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ResolveError{RepoPath: path, Err: err}
	}

	repo := hg.NewRepository(path)
	r.logger.Debug("resolving repository", zap.String("path", path), zap.String("subrepo", key))

	text, err := r.source.Log(ctx, path)
	if err != nil {
		return nil, &ResolveError{RepoPath: path, Err: err}
	}
	repo.SetChangeSets(hg.ParseLog(text, path, r.diags))

	for _, cs := range repo.ChangeSets {
		if cs.SubRepoChanges == nil {
			continue
		}
		if err := r.bindSubRepositories(ctx, repo, cs, key); err != nil {
			return nil, err
		}
	}

	bindParents(repo)

	r.logger.Debug("resolved repository",
		zap.String("path", path),
		zap.Int("changesets", len(repo.ChangeSets)))
	return repo, nil
}

// bindSubRepositories fills cs.SubRepoChanges from the composite-state diff of cs.
// key is the cache key of repo, "" for a root.
func (r *Resolver) bindSubRepositories(ctx context.Context, repo *hg.Repository, cs *hg.ChangeSet, key string) error {
	if err := ctx.Err(); err != nil {
		return &ResolveError{RepoPath: repo.LocalPath, Err: err}
	}
	diff, err := r.source.Diff(ctx, repo.LocalPath, strconv.Itoa(cs.ID))
	if err != nil {
		return &ResolveError{RepoPath: repo.LocalPath, Err: err}
	}

	for _, state := range hg.MergeSubStates(hg.ParseSubStates(diff)) {
		if !r.filter.matches(state.Name) {
			r.logger.Debug("skipping filtered sub-repository",
				zap.String("repository", repo.Name),
				zap.String("subrepo", state.Name))
			continue
		}

		sub, err := r.subRepository(ctx, repo, key, state.Name)
		if err != nil {
			return err
		}

		subKey := strings.ToLower(state.Name)
		if _, exists := cs.SubRepoChanges[subKey]; exists {
			r.diags.Add(hg.Diagnostic{
				Severity:   hg.SeverityError,
				Repository: repo.Name,
				ChangeSet:  cs.ID,
				Field:      "subrepo",
				Message:    fmt.Sprintf("duplicate transition for sub-repository %q, keeping the first", state.Name),
			})
			continue
		}
		cs.SubRepoChanges[subKey] = ChangeSetsBetween(sub, state.Removed, state.Added)
	}
	return nil
}

// subRepository returns the memoized model of a sub-repository of owner.
// ownerKey is the cache key of owner, "" for a root.
func (r *Resolver) subRepository(ctx context.Context, owner *hg.Repository, ownerKey, name string) (*hg.Repository, error) {
	key := strings.ToLower(name)
	path := filepath.Join(owner.LocalPath, name)
	if err := ctx.Err(); err != nil {
		return nil, &ResolveError{RepoPath: path, Err: err}
	}

	repo, err := r.cache.getOrResolve(ctx, ownerKey, key, func() (*hg.Repository, error) {
		return r.resolve(ctx, path, key)
	})
	if err != nil {
		var resolveErr *ResolveError
		if errors.As(err, &resolveErr) {
			return nil, err
		}
		return nil, &ResolveError{RepoPath: path, Err: err}
	}
	return repo, nil
}

// bindParents resolves ParentIDs into Parents and mirrors each edge into the
// parent's Children.
func bindParents(repo *hg.Repository) {
	for _, cs := range repo.ChangeSets {
		for _, id := range parentCandidates(cs) {
			parent := repo.ChangeSetByID(id)
			if parent == nil || parent == cs {
				continue
			}
			cs.Parents = append(cs.Parents, parent.ID)
			parent.Children = append(parent.Children, cs.ID)
		}
	}
}

// parentCandidates returns the ids a change set claims as parents. An empty
// parents line means the predecessor id; a missing one means none.
func parentCandidates(cs *hg.ChangeSet) []int {
	if !cs.HasParentsLine() {
		return nil
	}
	if len(cs.ParentIDs) == 0 {
		return []int{cs.ID - 1}
	}
	ids := make([]int, len(cs.ParentIDs))
	for i, p := range cs.ParentIDs {
		ids[i] = p.ID
	}
	return ids
}
