// Package sfclient is the entry point for creating Service Fabric clients.
//
//	cli, err := sfclient.NewWithCertificate(ctx, "https://cluster:19080", "client.pem", "client.key")
//	if err != nil { log.Fatal(err) }
//
//	_, err = cli.Nodes().ListAll(ctx, nil, func(node sf.NodeInfo) error {
//	  fmt.Println(node.Name, node.NodeStatus)
//	  return nil
//	})
package sfclient
