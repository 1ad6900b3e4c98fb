package cacheclient

import (
	"time"

	"github.com/QuangTung97/go-memcache/memcache"
	"github.com/QuangTung97/marketing/pkg/querycache"
)

// Client is a cache table shared between processes through memcached
type Client struct {
	client *memcache.Client
}

var _ querycache.Table = &Client{}

// New ...
func New(addr string, numConns int) (*Client, error) {
	client, err := memcache.New(addr, numConns, memcache.WithRetryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	return &Client{
		client: client,
	}, nil
}

// UnsafeFlushAll ...
func (c *Client) UnsafeFlushAll() error {
	p := c.client.Pipeline()
	defer p.Finish()
	return p.FlushAll()()
}

// Close ...
func (c *Client) Close() error {
	return c.client.Close()
}

// Get ...
func (c *Client) Get(key string) (querycache.GetOutput, error) {
	p := c.client.Pipeline()
	defer p.Finish()

	resp, err := p.MGet(key, memcache.MGetOptions{})()
	if err != nil {
		return querycache.GetOutput{}, err
	}
	if resp.Type != memcache.MGetResponseTypeVA {
		return querycache.GetOutput{}, nil
	}
	return querycache.GetOutput{
		Found: true,
		Data:  resp.Data,
	}, nil
}

// Set ...
func (c *Client) Set(key string, data []byte, ttl time.Duration) error {
	p := c.client.Pipeline()
	defer p.Finish()

	_, err := p.MSet(key, data, memcache.MSetOptions{
		TTL: uint32(ttl / time.Second),
	})()
	return err
}

// Delete ...
func (c *Client) Delete(key string) error {
	p := c.client.Pipeline()
	defer p.Finish()

	_, err := p.MDel(key, memcache.MDelOptions{})()
	return err
}
