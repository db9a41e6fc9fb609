package main

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/plouton-fw/transfer"
	"github.com/plouton-fw/transfer/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	ctx, err := transfer.NewBuilder().
		Directory("./gnet-capture").
		Format("json").
		Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	adapter := compat.NewGnetAdapter(ctx)

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(adapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
