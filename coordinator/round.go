// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"context"
	"math"
	"time"

	"github.com/bitmark-inc/archivenode/archive"
	"github.com/bitmark-inc/archivenode/background"
	"github.com/bitmark-inc/archivenode/bundle"
	"github.com/bitmark-inc/archivenode/fault"
	"github.com/bitmark-inc/archivenode/registry"
)

// extra upload delay per doubling of the previous bundle size
const uploadDelayPerDoubling = 5 * time.Second

// UploadDelay - time for validators to finish with the previous
// bundle before the next one is proposed
func UploadDelay(minimum time.Duration, previousItems uint64) time.Duration {
	if previousItems < 2 {
		return minimum
	}
	d := time.Duration(math.Log2(float64(previousItems)) * float64(uploadDelayPerDoubling))
	if d < minimum {
		return minimum
	}
	return d
}

// vote on another node's proposal
//
// nothing here is fatal: any failure skips the vote and the proposal is
// tried again on the next round if it is still current
func (m *Machine) validate(ctx context.Context) error {
	log := m.log
	proposal := m.session.pool.Proposal

	if !proposal.Exists() {
		log.Debug("no proposal to validate")
		return nil
	}
	if proposal.Uploader.Equal(m.session.address) {
		log.Debugf("bundle: %s is this node's proposal", proposal.BundleID)
		return nil
	}
	if _, voted := m.voted.Get(proposal.BundleID); voted {
		log.Debugf("bundle: %s already voted", proposal.BundleID)
		return nil
	}

	if m.conf.CheckEligibility {
		e, err := m.registry.CanVote(ctx, proposal.BundleID)
		if nil != err {
			log.Warnf("can vote: %s  error: %s", proposal.BundleID, err)
			return nil
		}
		if !e.Possible {
			log.Infof("cannot vote on bundle: %s  reason: %s", proposal.BundleID, e.Reason)
			return nil
		}
	}

	status, err := m.archive.GetStatus(ctx, proposal.BundleID)
	if nil != err {
		log.Warnf("bundle: %s  status error: %s", proposal.BundleID, err)
		return nil
	}
	if !status.Confirmed {
		log.Infof("bundle: %s is not yet retrievable, not voting", proposal.BundleID)
		return nil
	}

	local, err := m.loadBundle(ctx, proposal)
	if nil != err {
		log.Warnf("bundle: %s  heights: [%d, %d)  load error: %s", proposal.BundleID, proposal.FromHeight, proposal.ToHeight, err)
		return nil
	}

	downloaded, err := m.archive.Download(ctx, proposal.BundleID)
	if nil != err {
		log.Warnf("bundle: %s  download error: %s", proposal.BundleID, err)
		return nil
	}

	valid := bundle.Compare(local, proposal.ByteSize, downloaded, uint64(len(downloaded)))

	receipt, err := m.registry.Vote(ctx, registry.Vote{
		BundleID: proposal.BundleID,
		Valid:    valid,
	})
	if nil != err {
		log.Errorf("bundle: %s  vote error: %s", proposal.BundleID, err)
		return nil
	}

	m.voted.SetDefault(proposal.BundleID, valid)
	m.metrics.Vote(valid)
	if valid {
		log.Infof("voted valid on bundle: %s  tx: %s", proposal.BundleID, receipt.Hash)
	} else {
		log.Warnf("voted invalid on bundle: %s  tx: %s", proposal.BundleID, receipt.Hash)
	}
	return nil
}

// the local copy of a proposal's bundle
//
// heights the worker has not cached yet are waited for until the
// pool's upload timeout
func (m *Machine) loadBundle(ctx context.Context, proposal registry.BundleProposal) ([]byte, error) {
	deadline := m.now().Add(m.session.pool.UploadTimeout)
	for {
		data, err := m.bundler.LoadBundle(ctx, proposal)
		if !fault.IsErrNotFound(err) || !m.now().Before(deadline) {
			return data, err
		}
		m.log.Debugf("bundle: %s waiting for cache: %s", proposal.BundleID, err)
		if !background.Sleep(ctx, m.conf.PollInterval) {
			return nil, ctx.Err()
		}
	}
}

// build, upload and propose the next bundle
//
// only an archive fatal error (e.g. insufficient funds) is returned
func (m *Machine) upload(ctx context.Context) error {
	log := m.log
	address := m.session.address
	pool := m.session.pool

	if pool.Instructions.Uploader.IsZero() {
		receipt, err := m.registry.ClaimUploaderRole(ctx)
		if nil != err {
			log.Warnf("claim uploader role error: %s", err)
			return nil
		}
		log.Infof("claimed uploader role  tx: %s", receipt.Hash)
	}

	// the pool's bundle delay raises the configured floor
	minimum := m.conf.MinimumUploadDelay
	if pool.BundleDelay > minimum {
		minimum = pool.BundleDelay
	}
	delay := UploadDelay(minimum, pool.BundleSize)
	log.Debugf("waiting: %s before upload", delay)
	if !background.Sleep(ctx, delay) {
		return ctx.Err()
	}

	current, err := m.snapshot.Refresh(ctx)
	if nil != err {
		if fault.IsFatal(err) {
			return err
		}
		log.Warnf("refresh before upload error: %s", err)
		return nil
	}
	if current.Proposal.CreatedAt > m.session.createdAt {
		log.Info("round advanced while waiting, not uploading")
		return nil
	}
	instructions := current.Instructions
	if !instructions.Uploader.Equal(address) {
		log.Infof("uploader is: %q, not uploading", instructions.Uploader)
		return nil
	}

	if m.conf.CheckEligibility {
		e, err := m.registry.CanPropose(ctx, instructions.FromHeight)
		if nil != err {
			log.Warnf("can propose error: %s", err)
			return nil
		}
		if !e.Possible {
			log.Infof("cannot propose from height: %d  reason: %s", instructions.FromHeight, e.Reason)
			return nil
		}
	}

	b, err := m.bundler.CreateBundle(ctx, instructions, m.conf.Limits)
	if nil != err {
		log.Errorf("create bundle from: %d  error: %s", instructions.FromHeight, err)
		m.metrics.UploadFailure()
		return nil
	}
	if 0 == b.ItemCount() || b.ItemCount() < current.MinBundleSize {
		log.Infof("only: %d items cached from height: %d  minimum: %d, not uploading",
			b.ItemCount(), instructions.FromHeight, current.MinBundleSize)
		return nil
	}

	data, err := bundle.Encode(b.Items)
	if nil != err {
		log.Errorf("encode bundle: [%d, %d)  error: %s", b.FromHeight, b.ToHeight, err)
		m.metrics.UploadFailure()
		return nil
	}

	tags := archive.NewTags(archive.TagInfo{
		Pool:           m.conf.Pool,
		CoreVersion:    m.conf.CoreVersion,
		Runtime:        m.conf.Runtime,
		RuntimeVersion: m.conf.RuntimeVersion,
		Uploader:       address.String(),
		FromHeight:     b.FromHeight,
		ToHeight:       b.ToHeight,
	})

	id, err := m.archive.Upload(ctx, data, tags)
	if nil != err {
		if fault.IsFatal(err) {
			return err
		}
		log.Errorf("upload bundle: [%d, %d)  error: %s", b.FromHeight, b.ToHeight, err)
		m.metrics.UploadFailure()
		return nil
	}

	receipt, err := m.registry.SubmitBundleProposal(ctx, registry.Proposal{
		BundleID:  id,
		ByteSize:  uint64(len(data)),
		ItemCount: b.ItemCount(),
	})
	if nil != err {
		log.Errorf("submit bundle: %s  error: %s", id, err)
		m.metrics.UploadFailure()
		return nil
	}

	m.metrics.Proposal()
	log.Infof("proposed bundle: %s  heights: [%d, %d)  bytes: %d  tx: %s",
		id, b.FromHeight, b.ToHeight, len(data), receipt.Hash)
	return nil
}

// poll until a newer proposal appears or the bundle instructions change
//
// returns true only if a newer proposal was seen; false means the round
// must be retried: the upload timeout passed while this node holds the
// uploader role, or a claim of the role succeeded
func (m *Machine) awaitNext(ctx context.Context) (bool, error) {
	log := m.log
	timeout := m.session.pool.UploadTimeout
	deadline := m.now().Add(timeout)

	for {
		if !background.Sleep(ctx, m.conf.PollInterval) {
			return false, ctx.Err()
		}

		current, err := m.snapshot.Refresh(ctx)
		if nil != err {
			if fault.IsFatal(err) {
				return false, err
			}
			log.Warnf("refresh while waiting error: %s", err)
			continue
		}

		if current.Proposal.CreatedAt > m.session.createdAt {
			log.Debugf("round advanced: %d -> %d", m.session.createdAt, current.Proposal.CreatedAt)
			return true, nil
		}

		if !current.Instructions.Equal(m.session.instructions) {
			log.Infof("instructions changed: uploader: %q  from height: %d",
				current.Instructions.Uploader, current.Instructions.FromHeight)
			return false, nil
		}

		expired := timeout > 0 && !m.now().Before(deadline)

		// without a timeout the uploader retries after every poll
		if current.Instructions.Uploader.Equal(m.session.address) && (timeout <= 0 || expired) {
			log.Info("no new proposal while holding the uploader role, retrying upload")
			return false, nil
		}

		if !expired {
			continue
		}
		deadline = m.now().Add(timeout)

		log.Warnf("no new proposal within: %s, claiming uploader role", timeout)
		receipt, err := m.registry.ClaimUploaderRole(ctx)
		if nil != err {
			log.Warnf("claim uploader role error: %s", err)
			continue
		}
		log.Infof("claimed uploader role  tx: %s", receipt.Hash)
		return false, nil
	}
}
