package restore

import (
	"context"
	"net"
	"time"

	mgo "github.com/juju/mgo/v3"
)

// DefaultPreflightTimeout bounds the database ping.
const DefaultPreflightTimeout = 15 * time.Second

// DialInfo returns the connection settings the restore will use, so a ping
// authenticates exactly like the restore.
func DialInfo(d Descriptor, timeout time.Duration) *mgo.DialInfo {
	return &mgo.DialInfo{
		Addrs:    []string{net.JoinHostPort(d.Host, DatabasePort)},
		Database: d.Database,
		Source:   d.Database,
		Username: AdminUser,
		Password: d.Secret,
		Timeout:  timeout,
		Direct:   true,
	}
}

// PingDatabase connects to the target database and pings it.
func PingDatabase(ctx context.Context, d Descriptor) error {
	timeout := DefaultPreflightTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	session, err := mgo.DialWithInfo(DialInfo(d, timeout))
	if err != nil {
		return err
	}
	defer session.Close()
	return session.Ping()
}
