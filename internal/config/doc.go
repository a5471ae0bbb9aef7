// Package config provides configuration parsing for spanav applications.
//
// The configuration is stored in spanav.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "baseRoutes": ["account"],
//	  "routes": [
//	    {"pattern": "", "view": "<h1>Home</h1>"},
//	    {"pattern": "{accountNumber}/order/{orderNumber}",
//	     "view": "<h1>Order {{.Vars.orderNumber}}</h1>"}
//	  ],
//	  "matching": {
//	    "anchoredBase": false,
//	    "strictSegmentCount": false
//	  },
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "root": "#app"
//	  },
//	  "analytics": {
//	    "log": true,
//	    "prometheus": {"enabled": true, "namespace": "shop"},
//	    "s3": {"bucket": "shop-analytics", "prefix": "pageviews/", "flushInterval": "30s", "maxPending": 10000}
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
