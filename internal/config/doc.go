// Package config provides configuration parsing for the feature hub
// binary.
//
// Configuration is layered: struct tag defaults, then an optional
// featurehub.yaml (or .json/.toml) in the working directory, then
// environment variables under the FEATUREHUB prefix. A .env file in
// the working directory is loaded into the environment first.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  metrics: true
//	static:
//	  dir: "public"
//	  cache: "production"
//	sources:
//	  http:
//	    base_url: "https://cdn.example.com/modules/"
//	  s3:
//	    bucket: "feature-apps"
//	    region: "eu-west-1"
//	pages:
//	  - path: "/checkout"
//	    title: "Checkout"
//	    src: "apps/checkout.json"
//	    stylesheets:
//	      - href: "checkout.css"
//
// # Environment Overrides
//
//	FEATUREHUB_SERVER_ADDR=":9090"
//	FEATUREHUB_SOURCES_S3_BUCKET="feature-apps"
//	FEATUREHUB_LOG_FORMAT="json"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
