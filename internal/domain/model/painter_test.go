package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeMovementID(t *testing.T) {
	Convey("Given raw movement ids", t, func() {
		So(NormalizeMovementID("Q4692"), ShouldEqual, MovementID("http://www.wikidata.org/entity/Q4692"))
		So(NormalizeMovementID("  http://www.wikidata.org/entity/Q40415 "), ShouldEqual, MovementID("http://www.wikidata.org/entity/Q40415"))
		So(NormalizeMovementID("Qx1"), ShouldEqual, MovementID("Qx1"))
		So(NormalizeMovementID("").Empty(), ShouldBeTrue)
		So(NormalizeMovementID("   ").Empty(), ShouldBeTrue)
	})
}

func TestResultSet(t *testing.T) {
	Convey("Given a result set with mixed records", t, func() {
		rs := ResultSet{
			Movement: "m",
			Records: []PainterRecord{
				{Name: "a", Location: &LatLng{Lat: 1, Lon: 2}},
				{Name: "b"},
				{Name: "c", Location: &LatLng{Lat: 3, Lon: 4}},
			},
		}

		Convey("Located counts records with coordinates", func() {
			So(rs.Located(), ShouldEqual, 2)
		})

		Convey("Clone does not share the record slice", func() {
			c := rs.Clone()
			c.Records[0].Name = "changed"
			So(rs.Records[0].Name, ShouldEqual, "a")
		})
	})
}
