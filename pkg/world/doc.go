// Package world defines the domain model for a MUD-style room graph:
// rooms, directional exits, and the worlds that contain them.
//
// A [Room] is one location with named exits to other rooms. Exits are
// modeled as a tagged union ([ExitValue]) because persisted world data is
// loosely typed: an exit may be absent, a bare destination ID, or a
// detailed object carrying flags and a description. The decoder accepts
// all three shapes and unknown flags pass through untouched, so the model
// stays robust against partially specified or evolving world files.
//
// Rooms may carry stored map coordinates. These are modeled as an explicit
// option type ([Coordinates]) rather than nullable pointers - a room either
// has a deliberate placement or it doesn't, and downstream layout engines
// must never displace a deliberate placement.
//
// # Usage
//
//	w, err := world.ReadWorldFile("midgaard.json")
//	if err != nil {
//	    return err
//	}
//	for _, room := range w.Rooms {
//	    for dir, exit := range room.Exits {
//	        if target, ok := exit.Target(); ok {
//	            fmt.Printf("%s --%s--> %s\n", room.ID, dir, target)
//	        }
//	    }
//	}
package world
