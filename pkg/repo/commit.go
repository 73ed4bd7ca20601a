package repo

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/tinygit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an armored
// signature to be persisted in CommitObj.Signature.
type CommitSigner interface {
	Sign(payload []byte) (string, error)
}

// CommitOptions describes a commit to create with CommitTree.
type CommitOptions struct {
	Tree    object.Hash
	Parents []object.Hash // empty for a root commit
	Message string
	// Author defaults to the configured identity; Committer defaults to
	// Author.
	Author    string
	Committer string
	Signer    CommitSigner
}

// CommitTree writes a commit object pointing at opts.Tree and returns its
// hash. It does not move HEAD or any ref.
//
//  1. Check the tree and parents exist
//  2. Stamp author and committer with the current time and zone offset
//  3. Sign the payload when a signer is given
//  4. Write the commit to the store
func (r *Repo) CommitTree(opts CommitOptions) (object.Hash, error) {
	if opts.Tree.IsZero() {
		return object.ZeroHash, fmt.Errorf("commit-tree: %w: tree hash is required", object.ErrValidation)
	}
	if err := r.expectType(opts.Tree, object.TypeTree); err != nil {
		return object.ZeroHash, fmt.Errorf("commit-tree: tree: %w", err)
	}
	for _, p := range opts.Parents {
		if err := r.expectType(p, object.TypeCommit); err != nil {
			return object.ZeroHash, fmt.Errorf("commit-tree: parent: %w", err)
		}
	}

	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = r.Config.Identity()
	}
	committer := strings.TrimSpace(opts.Committer)
	if committer == "" {
		committer = author
	}
	if err := validateIdentity("author", author); err != nil {
		return object.ZeroHash, err
	}
	if err := validateIdentity("committer", committer); err != nil {
		return object.ZeroHash, err
	}

	now := r.clock.Now()
	commitObj := &object.CommitObj{
		TreeHash:  opts.Tree,
		Parents:   append([]object.Hash(nil), opts.Parents...),
		Author:    object.NewIdent(author, now),
		Committer: object.NewIdent(committer, now),
		Message:   opts.Message,
	}
	if opts.Signer != nil {
		signature, err := opts.Signer.Sign(object.CommitSigningPayload(commitObj))
		if err != nil {
			return object.ZeroHash, fmt.Errorf("commit-tree: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	h, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit-tree: write commit: %w", err)
	}
	r.logger.Debug("commit written",
		zap.Stringer("commit", h),
		zap.Stringer("tree", opts.Tree),
		zap.Int("parents", len(opts.Parents)),
		zap.Bool("signed", commitObj.Signature != ""),
	)
	return h, nil
}

// validateIdentity rejects identities that would break the one-line
// "author"/"committer" header.
func validateIdentity(role, person string) error {
	if strings.ContainsAny(person, "\n\r\x00") {
		return fmt.Errorf("commit-tree: %w: %s %q contains a line break or NUL", object.ErrValidation, role, person)
	}
	return nil
}

func (r *Repo) expectType(h object.Hash, want object.ObjectType) error {
	objType, _, err := r.Store.Read(h)
	if err != nil {
		return err
	}
	if objType != want {
		return fmt.Errorf("object %s: %w: got %q, want %q", h, object.ErrTypeMismatch, objType, want)
	}
	return nil
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	var commits []*object.CommitObj
	current := start

	for len(commits) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			// A shallow history may stop at a missing parent.
			if errors.Is(err, object.ErrNotFound) && len(commits) > 0 {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		commits = append(commits, c)

		// Follow first parent.
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return commits, nil
}
