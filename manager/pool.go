package manager

import (
	"context"
	"sync"
	"sync/atomic"

	address "github.com/filecoin-project/go-address"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/api/client"
	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// Factory creates a SubnetManager for one subnet entry. The returned
// close function tears the connection down and may be nil.
type Factory func(ctx context.Context, sn *config.Subnet) (SubnetManager, func(), error)

// LotusFactory connects to the subnet's node over JSON-RPC.
func LotusFactory(ctx context.Context, sn *config.Subnet) (SubnetManager, func(), error) {
	if sn.FVM == nil {
		return nil, nil, xerrors.Errorf("subnet %s has no fvm node configured", sn.ID)
	}
	node, closer, err := client.NewNodeRPC(ctx, sn.FVM.JSONRPCAPI, sn.FVM.AuthToken)
	if err != nil {
		return nil, nil, xerrors.Errorf("connecting to node of subnet %s: %w", sn.ID, err)
	}
	return NewLotusSubnetManager(sn.ID, sn.FVM.GatewayAddr, node), func() { closer() }, nil
}

// Connection pairs a subnet's manager with the config entry it was
// built from.
type Connection struct {
	Subnet  *config.Subnet
	Manager SubnetManager

	closer func()
}

// GatewayAddr returns the gateway actor address of the connection's
// subnet, falling back to the genesis default when unset.
func (c *Connection) GatewayAddr() address.Address {
	if c.Subnet.FVM != nil && c.Subnet.FVM.GatewayAddr != address.Undef {
		return c.Subnet.FVM.GatewayAddr
	}
	return gateway.DefaultGatewayAddr
}

// Pool keeps one Connection per configured subnet. Lookups read an
// immutable snapshot, so they never block behind a reload; a reload
// publishes a fresh snapshot and closes the connections it replaced.
type Pool struct {
	rc      *config.ReloadableConfig
	factory Factory

	lk    sync.Mutex // serializes rebuilds
	conns atomic.Value
}

// NewPool builds connections for every subnet in the current config.
func NewPool(ctx context.Context, rc *config.ReloadableConfig, factory Factory) (*Pool, error) {
	p := &Pool{rc: rc, factory: factory}
	if err := p.rebuild(ctx, rc.Get(), nil); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pool) snapshot() map[hierarchical.SubnetID]*Connection {
	conns, _ := p.conns.Load().(map[hierarchical.SubnetID]*Connection)
	return conns
}

// Get returns the connection for a subnet.
func (p *Pool) Get(id hierarchical.SubnetID) (*Connection, error) {
	conn, ok := p.snapshot()[id]
	if !ok {
		return nil, xerrors.Errorf("subnet %s: %w", id, ErrUnknownSubnet)
	}
	return conn, nil
}

// GetParent returns the connection for the parent of a subnet.
func (p *Pool) GetParent(id hierarchical.SubnetID) (*Connection, error) {
	if id.IsRoot() {
		return nil, xerrors.Errorf("subnet %s: %w", id, ErrNoParent)
	}
	conn, err := p.Get(id.Parent())
	if err != nil {
		return nil, xerrors.Errorf("parent of %s: %w", id, err)
	}
	return conn, nil
}

// Subnets returns the subnet IDs with a live connection.
func (p *Pool) Subnets() []hierarchical.SubnetID {
	conns := p.snapshot()
	out := make([]hierarchical.SubnetID, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	return out
}

// Reload re-reads the config file and rebuilds the connection set.
// Connections whose subnet entry is unchanged are kept as-is.
func (p *Pool) Reload(ctx context.Context) error {
	cfg, err := p.rc.Reload()
	if err != nil {
		return err
	}
	return p.rebuild(ctx, cfg, p.snapshot())
}

func (p *Pool) rebuild(ctx context.Context, cfg *config.Config, prev map[hierarchical.SubnetID]*Connection) error {
	p.lk.Lock()
	defer p.lk.Unlock()

	next := make(map[hierarchical.SubnetID]*Connection, len(cfg.Subnets))
	for id, sn := range cfg.Subnets {
		if old, ok := prev[id]; ok && sameNode(old.Subnet, sn) {
			next[id] = &Connection{Subnet: sn, Manager: old.Manager, closer: old.closer}
			continue
		}
		mgr, closer, err := p.factory(ctx, sn)
		if err != nil {
			log.Warnw("skipping subnet, cannot build manager", "subnet", id, "error", err)
			continue
		}
		next[id] = &Connection{Subnet: sn, Manager: mgr, closer: closer}
		log.Infow("connected to subnet node", "subnet", id)
	}

	p.conns.Store(next)

	for id, old := range prev {
		if kept, ok := next[id]; ok && kept.Manager == old.Manager {
			continue
		}
		if old.closer != nil {
			old.closer()
		}
	}
	return nil
}

// sameNode reports whether two entries point at the same node with the
// same credentials, meaning the existing connection can be reused.
func sameNode(a, b *config.Subnet) bool {
	if a.NetworkType != b.NetworkType || a.FVM == nil || b.FVM == nil {
		return false
	}
	return a.FVM.JSONRPCAPI == b.FVM.JSONRPCAPI &&
		a.FVM.AuthToken == b.FVM.AuthToken &&
		a.FVM.GatewayAddr == b.FVM.GatewayAddr
}

// Close tears down every connection in the pool.
func (p *Pool) Close() {
	p.lk.Lock()
	defer p.lk.Unlock()
	for _, conn := range p.snapshot() {
		if conn.closer != nil {
			conn.closer()
		}
	}
	p.conns.Store(map[hierarchical.SubnetID]*Connection{})
}
